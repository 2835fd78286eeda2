package tracer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "velofit/ratelimit"

// OTel adapts an OpenTelemetry tracer to the limiter's Tracer seam.
type OTel struct {
	tr trace.Tracer
}

// OTelOption configures the adapter.
type OTelOption func(*OTel)

// WithOTelTracer injects a pre-configured OpenTelemetry tracer instead of
// the global provider's.
func WithOTelTracer(tr trace.Tracer) OTelOption {
	return func(o *OTel) {
		o.tr = tr
	}
}

// NewOTel creates the OpenTelemetry-backed tracer. Without options it draws
// from the global tracer provider, so span export follows whatever SDK the
// process installed.
func NewOTel(opts ...OTelOption) *OTel {
	o := &OTel{}
	for _, opt := range opts {
		opt(o)
	}
	if o.tr == nil {
		o.tr = otel.Tracer(instrumentationName)
	}
	return o
}

func (o *OTel) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := o.tr.Start(ctx, name, trace.WithAttributes(convert(attrs)...))
	return ctx, otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) SetAttributes(attrs ...Attribute) {
	s.span.SetAttributes(convert(attrs)...)
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}

// convert maps the seam's attributes onto OpenTelemetry key-values.
// Unsupported value types are dropped rather than stringified.
func convert(attrs []Attribute) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			out = append(out, attribute.String(a.Key, v))
		case int:
			out = append(out, attribute.Int(a.Key, v))
		case float64:
			out = append(out, attribute.Float64(a.Key, v))
		}
	}
	return out
}

var (
	_ Tracer = (*OTel)(nil)
	_ Span   = otelSpan{}
)
