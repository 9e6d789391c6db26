package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/outlet/pkg/nav"
	"github.com/vango-dev/outlet/pkg/routepath"
)

// MetricsConfig configures the Prometheus metrics interceptor.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "outlet").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics interceptor.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "outlet",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for navigations.
type metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	navigationErrors   *prometheus.CounterVec
	recoveriesTotal    prometheus.Counter
}

// globalMetrics is the singleton backing the default registry. Created on
// the first Prometheus() call without WithRegistry; promauto panics on
// duplicate registration otherwise.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

// initMetrics initializes the Prometheus metrics.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of root-level navigations by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"path", "outcome"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration in seconds, from canonical path to settlement",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"path"}),

		navigationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_errors_total",
			Help:        "Total number of failed navigations by error type",
			ConstLabels: config.ConstLabels,
		}, []string{"path", "error_type"}),

		recoveriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "recoveries_total",
			Help:        "Total number of recovery navigations",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates an interceptor that collects Prometheus metrics for
// root-level navigations.
//
// Metrics collected:
//   - outlet_navigations_total: Counter of navigations by path and outcome
//   - outlet_navigation_duration_seconds: Histogram of navigation duration
//   - outlet_navigation_errors_total: Counter of failures by path and error type
//   - outlet_recoveries_total: Counter of Recover calls
//
// Calls without WithRegistry share a process-wide metrics instance bound to
// the default registerer; calls with WithRegistry get a fresh instance.
//
// Example:
//
//	root := outlet.New(outlet.Config{
//	    Interceptors: []nav.Interceptor{
//	        middleware.Prometheus(middleware.WithNamespace("myapp")),
//	    },
//	})
//
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) nav.Interceptor {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	var m *metrics
	if config.Registry == prometheus.DefaultRegisterer {
		globalMetricsMu.Lock()
		if globalMetrics == nil {
			globalMetrics = initMetrics(config)
		}
		m = globalMetrics
		globalMetricsMu.Unlock()
	} else {
		m = initMetrics(config)
	}

	return nav.InterceptorFunc(func(ctx context.Context, nv *nav.Navigation, next func() error) error {
		path := nv.Path
		if path == "" {
			path = "/"
		}
		if nv.Recovery {
			m.recoveriesTotal.Inc()
		}

		start := time.Now()
		err := next()
		m.navigationDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())

		if err != nil {
			m.navigationErrors.WithLabelValues(path, categorizeError(err)).Inc()
		}
		m.navigationsTotal.WithLabelValues(path, outcomeLabel(nv.Result, err)).Inc()

		return err
	})
}

// outcomeLabel maps a settled navigation to a bounded outcome label.
func outcomeLabel(res *nav.Result, err error) string {
	if err != nil {
		return "error"
	}
	if res == nil {
		return "unknown"
	}
	switch res.Phase {
	case nav.PhaseCommitted:
		if res.Superseded {
			return "superseded"
		}
		return "committed"
	case nav.PhaseCancelled:
		return "cancelled"
	case nav.PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// categorizeError returns a bounded category for the error. Guard errors
// propagate unmodified from application code, so anything unrecognized is
// attributed to a guard rather than echoed into a label.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, nav.ErrNoMatch):
		return "no_match"
	case errors.Is(err, nav.ErrNodeClosed):
		return "node_closed"
	case errors.Is(err, routepath.ErrInvalidPath):
		return "invalid_path"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "guard"
	}
}
