package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProviderDisabled(t *testing.T) {
	cfg := Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     1.0,
		ServiceName:       "siscalculo-test",
	}

	tp, err := NewTracerProvider(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.False(t, tp.IsEnabled())

	// Tracer still works, backed by the global no-op provider.
	tracer := tp.Tracer("test")
	require.NotNil(t, tracer)
	_, span := tracer.Start(context.Background(), "noop-span")
	span.End()

	assert.NoError(t, tp.ForceFlush(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProviderDisabledIgnoresRatio(t *testing.T) {
	for _, ratio := range []float64{0.0, 0.5, 1.0} {
		tp, err := NewTracerProvider(context.Background(), Config{
			Enabled:           false,
			CollectorEndpoint: "localhost:4317",
			SamplingRatio:     ratio,
			ServiceName:       "siscalculo-test",
		}, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.False(t, tp.IsEnabled())
		assert.NoError(t, tp.Shutdown(context.Background()))
	}
}
