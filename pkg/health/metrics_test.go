package health

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeReporter struct {
	name   string
	health ComponentHealth
}

func (f fakeReporter) Name() string { return f.name }
func (f fakeReporter) HealthCheck(context.Context) ComponentHealth { return f.health }

func TestCollectorEmitsOkGauge(t *testing.T) {
	collector := NewCollector(context.Background(), fakeReporter{name: "store", health: IntrinsicallyUp()})

	got := testutil.ToFloat64(collector)
	if got != 0 {
		t.Fatalf("gauge = %v, want 0 for an up component", got)
	}
}

func TestCollectorEmitsDownGauge(t *testing.T) {
	collector := NewCollector(context.Background(), fakeReporter{
		name:   "store",
		health: Singular(Down(NewFailureMessage("unreachable"))),
	})

	got := testutil.ToFloat64(collector)
	if got != 2 {
		t.Fatalf("gauge = %v, want 2 for a down component", got)
	}
}

func TestCollectorWalksAdditiveChildren(t *testing.T) {
	collector := NewCollector(context.Background(), fakeReporter{
		name: "root",
		health: Additive(
			Report{Name: "a", Health: IntrinsicallyUp()},
			Report{Name: "b", Health: Singular(Down(NewFailureMessage("boom")))},
		),
	})

	registry := prometheus.NewPedanticRegistry()
	if err := registry.Register(collector); err != nil {
		t.Fatalf("register: %v", err)
	}

	metrics, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("expected 1 metric family, got %d", len(metrics))
	}
	if got, want := len(metrics[0].GetMetric()), 3; got != want {
		t.Fatalf("expected %d samples (root + 2 children), got %d", want, got)
	}
}

func TestCollectorDescribeEmitsOneDesc(t *testing.T) {
	collector := NewCollector(context.Background(), fakeReporter{name: "x", health: IntrinsicallyUp()})

	ch := make(chan *prometheus.Desc, 2)
	collector.Describe(ch)
	close(ch)

	count := 0
	for range ch {
		count++
	}
	if count != 1 {
		t.Fatalf("expected 1 Desc, got %d", count)
	}
}
