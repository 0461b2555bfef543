package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// These tests replace the global tracer provider and must not run in
// parallel.

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_StdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracing(context.Background(), TracingConfig{
		Enabled:     true,
		ServiceName: "sosgrid-test",
		Exporter:    "stdout",
		SampleRatio: 1,
		Writer:      &buf,
	})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "sos.Run")
	span.End()

	ShutdownWithTimeout(context.Background(), shutdown)
	require.Contains(t, buf.String(), `"Name": "sos.Run"`)
	require.Contains(t, buf.String(), "sosgrid-test")

	_, err = InitTracing(context.Background(), TracingConfig{})
	require.NoError(t, err)
}

func TestInitTracing_UnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "carrier-pigeon"})
	require.ErrorContains(t, err, "unsupported tracing exporter")
}

func TestTracingConfigFromEnv(t *testing.T) {
	t.Setenv("SOSGRID_TRACING_ENABLED", "TRUE")
	t.Setenv("SOSGRID_TRACING_EXPORTER", "OTLP")
	t.Setenv("SOSGRID_TRACING_SAMPLE_RATIO", "2")
	t.Setenv("SOSGRID_OTLP_ENDPOINT", "collector:4317")

	cfg := TracingConfigFromEnv()
	require.True(t, cfg.Enabled)
	require.Equal(t, "otlp", cfg.Exporter)
	require.Equal(t, "sosgrid", cfg.ServiceName)
	require.Equal(t, 1.0, cfg.SampleRatio)
	require.Equal(t, "collector:4317", cfg.Endpoint)
}
