package metrics

import (
	"context"
	"testing"
	"time"
)

func TestServeDisabledWithoutAddr(t *testing.T) {
	done := make(chan error, 1)
	go func() { done <- Serve(context.Background(), "  ", nil, nil) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("serve should return immediately when disabled")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", nil, nil) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected shutdown error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}
