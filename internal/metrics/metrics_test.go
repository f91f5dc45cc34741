package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.FollowRequests.WithLabelValues("/api/v1/follow/").Inc()
	m.FollowRequests.WithLabelValues("/api/v1/follow/").Inc()
	m.PermissionDenied.WithLabelValues("post").Inc()

	if got := testutil.ToFloat64(m.FollowRequests.WithLabelValues("/api/v1/follow/")); got != 2 {
		t.Fatalf("follow counter = %v, want 2", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 2 {
		t.Fatalf("expected 2 families with samples, got %d", len(families))
	}
}

func TestNewPanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	New(reg)
}
