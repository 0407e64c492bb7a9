package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	_, span := Tracer("test").Start(context.Background(), "op")
	assert.False(t, span.SpanContext().IsValid(), "noop provider should produce invalid span contexts")
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}

func TestWithDefaults(t *testing.T) {
	t.Setenv("VERSION", "")
	t.Setenv("ENVIRONMENT", "staging")

	cfg := withDefaults(Config{})
	assert.Equal(t, DefaultServiceName, cfg.ServiceName)
	assert.Equal(t, "1.0.0", cfg.ServiceVersion)
	assert.Equal(t, "staging", cfg.Environment)

	cfg = withDefaults(Config{ServiceName: "svc", ServiceVersion: "2.0", Environment: "dev"})
	assert.Equal(t, "svc", cfg.ServiceName)
	assert.Equal(t, "2.0", cfg.ServiceVersion)
	assert.Equal(t, "dev", cfg.Environment)
}
