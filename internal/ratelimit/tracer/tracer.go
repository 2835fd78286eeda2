// Package tracer is the tracing seam for the rate limiter: every consume
// emits one span. The rest of velofit stays trace-free, so the seam lives
// here with the limiter instead of in platform.
//
// The default implementation is the no-op; the OpenTelemetry adapter is
// opt-in via configuration.
package tracer

import "context"

// Span names and attribute keys emitted by the limiter.
const (
	SpanConsume = "ratelimit.consume"

	AttrNamespace = "namespace"
	AttrAvailable = "available"
)

// Attribute is one key-value pair attached to a span.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an integer attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Float64 creates a float attribute.
func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span is one in-flight consume operation.
type Span interface {
	// SetAttributes attaches attributes to the span.
	SetAttributes(attrs ...Attribute)
	// End completes the span. A non-nil err marks it failed.
	// Call exactly once, typically via defer.
	End(err error)
}

// Tracer starts consume spans. Implementations must be safe for
// concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}
