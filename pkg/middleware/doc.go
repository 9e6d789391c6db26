// Package middleware provides observability interceptors for root-level
// navigations: OpenTelemetry distributed tracing and Prometheus metrics.
//
// # OpenTelemetry Interceptor
//
// The OpenTelemetry interceptor creates a span per navigation, carrying the
// pathname, the settled phase, and the recovery flag.
//
//	root := outlet.New(outlet.Config{
//	    Interceptors: []nav.Interceptor{
//	        middleware.OpenTelemetry(),
//	    },
//	})
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-app"),
//	    middleware.WithNavigationFilter(func(nav *nav.Navigation) bool {
//	        return nav.Path != "/healthz"
//	    }),
//	)
//
// # Prometheus Interceptor
//
// The Prometheus interceptor collects navigation metrics:
//   - outlet_navigations_total: Counter of navigations by path and outcome
//   - outlet_navigation_duration_seconds: Histogram of navigation latency
//   - outlet_navigation_errors_total: Counter of failures by path and error type
//   - outlet_recoveries_total: Counter of Recover calls
//
//	root := outlet.New(outlet.Config{
//	    Interceptors: []nav.Interceptor{
//	        middleware.Prometheus(),
//	    },
//	})
//
// Then expose the metrics endpoint:
//
//	http.Handle("/metrics", promhttp.Handler())
//	go http.ListenAndServe(":9090", nil)
//
// Interceptors wrap Navigate and Recover by delegation and cannot alter
// navigation semantics; they observe the Navigation, the settled Result on
// it, and the error returned by the rest of the chain.
package middleware
