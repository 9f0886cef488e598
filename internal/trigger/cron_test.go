package trigger

import (
	"context"
	"testing"
	"time"
)

func TestNewCron_Validates(t *testing.T) {
	if _, err := NewCron("", ""); err == nil {
		t.Fatalf("expected error for empty schedule")
	}
	if _, err := NewCron("not a schedule", ""); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
	if _, err := NewCron("0 9 * * *", "Nowhere/Special"); err == nil {
		t.Fatalf("expected error for invalid timezone")
	}
	if _, err := NewCron("@every 1h", "Europe/Amsterdam"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCron_ClosesOnCancel(t *testing.T) {
	c, err := NewCron("@every 1h", "")
	if err != nil {
		t.Fatalf("NewCron: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	events, err := c.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Fatalf("expected no tick before close")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("events channel not closed after cancel")
	}
}
