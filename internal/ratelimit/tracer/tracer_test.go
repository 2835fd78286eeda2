package tracer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velofit/internal/ratelimit/tracer"
)

func TestNoop_Start(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, tracer.SpanConsume,
		tracer.String(tracer.AttrNamespace, "email_verification"),
	)

	assert.Equal(t, ctx, newCtx, "noop must pass the context through untouched")
	require.NotNil(t, span)

	span.SetAttributes(tracer.Float64(tracer.AttrAvailable, 0.5))
	span.End(nil)
}

func TestNoop_SpanEndWithError(t *testing.T) {
	tr := tracer.NewNoop()

	_, span := tr.Start(context.Background(), tracer.SpanConsume)
	require.NotNil(t, span)
	span.End(errors.New("limiter failure"))
}

func TestOTel_Start(t *testing.T) {
	// Without an installed SDK the global provider is a no-op; span
	// operations must still be safe.
	tr := tracer.NewOTel()

	ctx, span := tr.Start(context.Background(), tracer.SpanConsume,
		tracer.String(tracer.AttrNamespace, "email_verification"),
		tracer.Int("attempt", 1),
	)
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	span.SetAttributes(tracer.Float64(tracer.AttrAvailable, 1.25))
	span.End(errors.New("rejected"))
}

func TestAttributeConstructors(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		attr := tracer.String("key", "value")
		assert.Equal(t, "key", attr.Key)
		assert.Equal(t, "value", attr.Value)
	})

	t.Run("Int", func(t *testing.T) {
		attr := tracer.Int("attempt", 2)
		assert.Equal(t, "attempt", attr.Key)
		assert.Equal(t, 2, attr.Value)
	})

	t.Run("Float64", func(t *testing.T) {
		attr := tracer.Float64("available", 0.5)
		assert.Equal(t, "available", attr.Key)
		assert.Equal(t, 0.5, attr.Value)
	})
}

func TestSpanConstants(t *testing.T) {
	assert.Equal(t, "ratelimit.consume", tracer.SpanConsume)
	assert.Equal(t, "namespace", tracer.AttrNamespace)
	assert.Equal(t, "available", tracer.AttrAvailable)
}
