package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdown_BeforeInit(t *testing.T) {
	assert.NoError(t, Shutdown(context.Background()))
}

func TestInit_Disabled(t *testing.T) {
	require.NoError(t, Init(context.Background(), Config{Enabled: false}))

	// The otel no-op provider stays installed, so tracers still work.
	assert.NotNil(t, Tracer("marketboard/test"))
}

func TestInit_EnabledWithStdoutExporter(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, Init(ctx, Config{
		Enabled:        true,
		ServiceName:    "marketboard-test",
		ServiceVersion: "test",
		Environment:    "test",
	}))

	_, span := Tracer("marketboard/test").Start(ctx, "test_span")
	assert.True(t, span.IsRecording())
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, Shutdown(ctx))
}
