package tracing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/abhisek/brainkit/internal/config"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{}, "v0.0.0", nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
}

func TestInit_WritesSpans(t *testing.T) {
	out := filepath.Join(t.TempDir(), "spans.json")
	cfg := config.TracingConfig{
		Enabled:     true,
		ServiceName: "brainkit-test",
		SampleRatio: 1,
		Output:      out,
	}

	shutdown, err := Init(context.Background(), cfg, "v1.2.3", nil)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "GET /recommendations")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "GET /recommendations")
	assert.Contains(t, string(data), "brainkit-test")
}
