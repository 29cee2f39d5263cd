package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestJobQueueMetricsCountsByTypeAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobQueueMetrics(reg)

	m.Observe("order-create", "completed", 40*time.Millisecond)
	m.Observe("order-create", "completed", 10*time.Millisecond)
	m.Observe("order-create", "failed", time.Millisecond)
	m.Observe("", "unknown_type", 0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	mf := findMetricFamily(mfs, "pos_jobs_processed_total")
	if mf == nil {
		t.Fatal("processed counter not exported")
	}
	counts := map[string]float64{}
	for _, metric := range mf.GetMetric() {
		counts[labelValue(metric, "type")+"/"+labelValue(metric, "status")] = metric.GetCounter().GetValue()
	}
	if counts["order-create/completed"] != 2 || counts["order-create/failed"] != 1 || counts["unknown/unknown_type"] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}

	if sum, err := fetchHistogramSum(mfs, "pos_jobs_duration_seconds", "type", "order-create"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if sum < 0.05 {
		t.Fatalf("expected duration sum >= 0.05, got %f", sum)
	}
}

func labelValue(metric *dto.Metric, name string) string {
	for _, l := range metric.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}
