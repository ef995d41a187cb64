package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitTracerDisabledIsNoop(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	shutdown := InitTracer()
	assert.NoError(t, shutdown(context.Background()))
}

func TestEnvOr(t *testing.T) {
	t.Setenv("TRACER_TEST_KEY", "")
	assert.Equal(t, "fallback", envOr("TRACER_TEST_KEY", "fallback"))
	t.Setenv("TRACER_TEST_KEY", "set")
	assert.Equal(t, "set", envOr("TRACER_TEST_KEY", "fallback"))
}
