package pubsub

import (
	"testing"

	"github.com/pujasera/pos-backend/pkg/config"
)

func TestSubscriptionNamesSkipsBlank(t *testing.T) {
	names := subscriptionNames(config.PubSubConfig{
		JobsSubscription:         " jobs-sub ",
		TransactionsSubscription: "",
	})
	if len(names) != 1 || names[0] != "jobs-sub" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestResourceNames(t *testing.T) {
	c := &Client{projectID: "proj"}

	if got := c.subscriptionResourceName("jobs-sub"); got != "projects/proj/subscriptions/jobs-sub" {
		t.Fatalf("unexpected subscription name %q", got)
	}
	full := "projects/other/subscriptions/x"
	if got := c.subscriptionResourceName(full); got != full {
		t.Fatalf("expected full name passthrough, got %q", got)
	}
	if got := c.topicResourceName("pos-job-queue"); got != "projects/proj/topics/pos-job-queue" {
		t.Fatalf("unexpected topic name %q", got)
	}
	if got := c.topicResourceName("  "); got != "" {
		t.Fatalf("expected empty name for blank topic, got %q", got)
	}
}

func TestNilClientAccessors(t *testing.T) {
	var c *Client
	if c.Subscription("jobs") != nil {
		t.Fatal("expected nil subscriber")
	}
	if c.Publisher("jobs") != nil {
		t.Fatal("expected nil publisher")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on nil client: %v", err)
	}
}
