package contextkeys

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTraceID(t *testing.T) {
	incoming := uuid.NewString()
	assert.Equal(t, incoming, ResolveTraceID(incoming))

	for _, raw := range []string{"", "not-a-uuid", "<script>"} {
		got := ResolveTraceID(raw)
		_, err := uuid.Parse(got)
		require.NoError(t, err, raw)
		assert.NotEqual(t, raw, got)
	}
}

func TestTraceIDRoundTrip(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))

	ctx := ContextWithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", TraceIDFromContext(ctx))
}

func TestLoggerFromContextFallsBackToNoop(t *testing.T) {
	logger := LoggerFromContext(context.Background())
	require.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.WithFields(nil).Error("msg", nil, nil)
	})

	ctx := ContextWithLogger(context.Background(), logger)
	assert.Same(t, logger, LoggerFromContext(ctx))
}
