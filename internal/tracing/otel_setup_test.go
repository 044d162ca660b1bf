package tracing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"registration-service/internal/tracing"
)

func TestInitTracerProvider_Disabled(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := tracing.InitTracerProvider(context.Background(), "registration-service", "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))
	require.Equal(t, before, otel.GetTracerProvider())
}

func TestInitTracerProvider_Enabled(t *testing.T) {
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	// grpc.NewClient connects lazily, so no collector needs to be listening.
	shutdown, err := tracing.InitTracerProvider(context.Background(), "registration-service", "localhost:4317")
	require.NoError(t, err)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	require.True(t, ok)

	require.NoError(t, shutdown(context.Background()))
}
