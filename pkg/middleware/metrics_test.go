package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/vango-dev/outlet/pkg/nav"
)

// gatherValue fetches a counter or histogram sample count from reg by fully
// qualified name and label set.
func gatherValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			for k, v := range labels {
				if !hasLabel(m, k, v) {
					continue metric
				}
			}
			switch {
			case m.Counter != nil:
				return m.GetCounter().GetValue()
			case m.Histogram != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func hasLabel(m *dto.Metric, key, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == key && lp.GetValue() == value {
			return true
		}
	}
	return false
}

// committing returns a next func that settles nv in the given phase.
func committing(nv *nav.Navigation, phase nav.Phase, err error) func() error {
	return func() error {
		nv.Result = &nav.Result{Phase: phase, Path: nv.Path}
		return err
	}
}

func TestPrometheusRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	mw := Prometheus(WithRegistry(reg), WithNamespace("testns"))

	nv := &nav.Navigation{Path: "/users/42"}
	if err := mw.Handle(context.Background(), nv, committing(nv, nav.PhaseCommitted, nil)); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if got := gatherValue(t, reg, "testns_navigations_total", map[string]string{"path": "/users/42", "outcome": "committed"}); got != 1 {
		t.Errorf("navigations_total(committed) = %v, want 1", got)
	}
	if got := gatherValue(t, reg, "testns_navigation_duration_seconds", map[string]string{"path": "/users/42"}); got != 1 {
		t.Errorf("duration sample count = %v, want 1", got)
	}
	if got := gatherValue(t, reg, "testns_navigation_errors_total", nil); got != 0 {
		t.Errorf("navigation_errors_total = %v, want 0", got)
	}
}

func TestPrometheusRecordsCancellation(t *testing.T) {
	reg := prometheus.NewRegistry()
	mw := Prometheus(WithRegistry(reg), WithNamespace("testns"))

	nv := &nav.Navigation{Path: "/guarded"}
	if err := mw.Handle(context.Background(), nv, committing(nv, nav.PhaseCancelled, nil)); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if got := gatherValue(t, reg, "testns_navigations_total", map[string]string{"path": "/guarded", "outcome": "cancelled"}); got != 1 {
		t.Errorf("navigations_total(cancelled) = %v, want 1", got)
	}
}

func TestPrometheusCategorizesErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no match", nav.ErrNoMatch, "no_match"},
		{"wrapped no match", errors.New("x"), "guard"},
		{"closed node", nav.ErrNodeClosed, "node_closed"},
		{"context canceled", context.Canceled, "canceled"},
		{"deadline", context.DeadlineExceeded, "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			mw := Prometheus(WithRegistry(reg), WithNamespace("testns"))

			nv := &nav.Navigation{Path: "/x"}
			err := mw.Handle(context.Background(), nv, committing(nv, nav.PhaseFailed, tt.err))
			if !errors.Is(err, tt.err) {
				t.Fatalf("Handle error = %v, want %v passed through", err, tt.err)
			}

			if got := gatherValue(t, reg, "testns_navigation_errors_total", map[string]string{"path": "/x", "error_type": tt.want}); got != 1 {
				t.Errorf("navigation_errors_total(%s) = %v, want 1", tt.want, got)
			}
			if got := gatherValue(t, reg, "testns_navigations_total", map[string]string{"path": "/x", "outcome": "error"}); got != 1 {
				t.Errorf("navigations_total(error) = %v, want 1", got)
			}
		})
	}
}

func TestPrometheusCountsRecoveries(t *testing.T) {
	reg := prometheus.NewRegistry()
	mw := Prometheus(WithRegistry(reg), WithNamespace("testns"))

	nv := &nav.Navigation{Path: "/fresh", Recovery: true}
	if err := mw.Handle(context.Background(), nv, committing(nv, nav.PhaseCommitted, nil)); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if got := gatherValue(t, reg, "testns_recoveries_total", nil); got != 1 {
		t.Errorf("recoveries_total = %v, want 1", got)
	}
}

func TestPrometheusEmptyPathNormalizedToRoot(t *testing.T) {
	reg := prometheus.NewRegistry()
	mw := Prometheus(WithRegistry(reg), WithNamespace("testns"))

	nv := &nav.Navigation{Path: ""}
	if err := mw.Handle(context.Background(), nv, committing(nv, nav.PhaseCommitted, nil)); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if got := gatherValue(t, reg, "testns_navigations_total", map[string]string{"path": "/"}); got != 1 {
		t.Errorf("navigations_total(path=/) = %v, want 1", got)
	}
}
