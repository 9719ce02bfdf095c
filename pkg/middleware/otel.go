package middleware

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vtree-ui/vtree/pkg/scheduler"
	"github.com/vtree-ui/vtree/pkg/vtree"
)

// Default tracer name for vtree applications.
const defaultTracerName = "vtree"

// OTelConfig configures the OpenTelemetry observer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "vtree").
	TracerName string

	// IncludeNodePath includes the failing node's path in panic events.
	// Paths may reveal application structure - enabled by default.
	IncludeNodePath bool

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry observer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeNodePath enables/disables node paths in panic events.
func WithIncludeNodePath(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeNodePath = include
	}
}

// WithTracer sets an explicit tracer, bypassing the global provider.
func WithTracer(tracer trace.Tracer) OTelOption {
	return func(c *OTelConfig) {
		c.tracer = tracer
	}
}

// OTel returns a TickObserver that emits one span per update tick, with
// node and call counts as attributes and recovered panics as span events.
//
// The scheduler's execution model is single-threaded per tick, so the
// observer keeps the open span between TickStarted and TickCompleted.
func OTel(opts ...OTelOption) scheduler.TickObserver {
	config := &OTelConfig{
		TracerName:      defaultTracerName,
		IncludeNodePath: true,
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.tracer == nil {
		config.tracer = otel.Tracer(config.TracerName)
	}

	return &otelObserver{config: config}
}

type otelObserver struct {
	config *OTelConfig

	span     trace.Span
	failures int
}

// TickStarted implements scheduler.TickObserver.
func (o *otelObserver) TickStarted(tick int64) {
	_, o.span = o.config.tracer.Start(context.Background(), "vtree.tick",
		trace.WithAttributes(attribute.Int64("vtree.tick", tick)))
	o.failures = 0
}

// NodeUpdated implements scheduler.TickObserver.
func (o *otelObserver) NodeUpdated(vn *vtree.VN, elapsed time.Duration) {}

// CallExecuted implements scheduler.TickObserver.
func (o *otelObserver) CallExecuted(beforeUpdate bool) {}

// UpdateFailed implements scheduler.TickObserver.
func (o *otelObserver) UpdateFailed(vn *vtree.VN, recovered any) {
	o.failures++
	if o.span == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("vtree.panic", fmt.Sprint(recovered)),
	}
	if o.config.IncludeNodePath && vn != nil {
		attrs = append(attrs, attribute.StringSlice("vtree.node_path", vn.Path()))
	}
	o.span.AddEvent("panic recovered", trace.WithAttributes(attrs...))
}

// TickCompleted implements scheduler.TickObserver.
func (o *otelObserver) TickCompleted(tick int64, nodesUpdated int, elapsed time.Duration) {
	if o.span == nil {
		return
	}

	o.span.SetAttributes(
		attribute.Int("vtree.nodes_updated", nodesUpdated),
		attribute.Int("vtree.failures", o.failures),
	)
	if o.failures > 0 {
		o.span.SetStatus(codes.Error, "panics recovered during tick")
	} else {
		o.span.SetStatus(codes.Ok, "")
	}
	o.span.End()
	o.span = nil
}
