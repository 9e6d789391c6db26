package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/vango-dev/outlet/pkg/nav"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for navigation traces.
const defaultTracerName = "outlet"

// OTelConfig configures the OpenTelemetry interceptor.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "outlet").
	TracerName string

	// IncludeQuery includes the opaque query string in traces.
	// May contain sensitive information - disabled by default.
	IncludeQuery bool

	// Filter determines which navigations to trace.
	// Return true to trace the navigation, false to skip.
	// If nil, all navigations are traced.
	Filter func(nav *nav.Navigation) bool

	// AttributeExtractor extracts custom attributes from the navigation.
	// Called before each traced navigation starts.
	AttributeExtractor func(nav *nav.Navigation) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry interceptor.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeQuery enables including the query string in traces.
func WithIncludeQuery(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeQuery = include
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(nav *nav.Navigation) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(nav *nav.Navigation) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// defaultOTelConfig returns the default OpenTelemetry configuration.
func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:   defaultTracerName,
		IncludeQuery: false,
		Filter:       nil,
	}
}

// OpenTelemetry creates an interceptor that traces every root-level
// navigation.
//
// The interceptor:
//   - Creates a span per navigation, named after the pathname
//   - Records the pathname and the recovery flag as attributes
//   - Records the settled phase and committed route once the navigation ends
//   - Records errors and sets span status
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in your main() before creating the root:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	    sdktrace.WithResource(resource.NewWithAttributes(
//	        semconv.SchemaURL,
//	        semconv.ServiceName("my-app"),
//	    )),
//	)
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) nav.Interceptor {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Resolve tracer from global provider
	config.tracer = otel.Tracer(config.TracerName)

	return nav.InterceptorFunc(func(ctx context.Context, nv *nav.Navigation, next func() error) error {
		if config.Filter != nil && !config.Filter(nv) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("outlet.path", nv.Path),
			attribute.Bool("outlet.recovery", nv.Recovery),
		}
		if config.IncludeQuery && nv.Query != "" {
			attrs = append(attrs, attribute.String("outlet.query", nv.Query))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(nv)...)
		}

		_, span := config.tracer.Start(
			ctx,
			formatSpanName(nv),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
			trace.WithTimestamp(time.Now()),
		)
		defer span.End()

		err := next()

		if res := nv.Result; res != nil {
			span.SetAttributes(attribute.String("outlet.phase", res.Phase.String()))
			if res.Route != nil {
				span.SetAttributes(attribute.String("outlet.route", res.Route.Path))
			}
			if res.Superseded {
				span.SetAttributes(attribute.Bool("outlet.superseded", true))
			}
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	})
}

// formatSpanName creates a span name from the navigation.
func formatSpanName(nv *nav.Navigation) string {
	path := nv.Path
	if path == "" {
		path = "/"
	}
	if nv.Recovery {
		return fmt.Sprintf("outlet.recover %s", path)
	}
	return fmt.Sprintf("outlet.navigate %s", path)
}
