package health

import (
	"context"
	"testing"
)

func TestCheckAll_Empty(t *testing.T) {
	r := NewRegistry()
	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Error("empty registry should be healthy")
	}
	if len(statuses) != 0 {
		t.Errorf("expected no statuses, got %d", len(statuses))
	}
}

func TestCheckAll_AllHealthy(t *testing.T) {
	r := NewRegistry()
	r.Register("database", func(ctx context.Context) Status {
		return Status{Name: "database", Healthy: true}
	})
	r.Register("vnpay_config", func(ctx context.Context) Status {
		return Status{Name: "vnpay_config", Healthy: true}
	})

	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Error("expected healthy")
	}
	if len(statuses) != 2 {
		t.Errorf("expected 2 statuses, got %d", len(statuses))
	}
}

func TestCheckAll_OneUnhealthy(t *testing.T) {
	r := NewRegistry()
	r.Register("database", func(ctx context.Context) Status {
		return Status{Name: "database", Healthy: false, Detail: "connection refused"}
	})
	r.Register("sessions", func(ctx context.Context) Status {
		return Status{Name: "sessions", Healthy: true}
	})

	healthy, statuses := r.CheckAll(context.Background())
	if healthy {
		t.Error("expected unhealthy aggregate")
	}
	if statuses[0].Detail != "connection refused" {
		t.Errorf("unexpected detail: %q", statuses[0].Detail)
	}
}
