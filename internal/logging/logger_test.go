package logging

import (
	"context"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	logger, err := New(Config{Level: "warn", Env: "prod"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = New(Config{Level: "debug", Env: "local"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = New(Config{Level: "loud"})
	require.Error(t, err)
}

func TestHelpersAttachRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	Info(ctx, logger, "order placed", zap.Int64("order_id", 7))
	Warn(context.Background(), logger, "publish failed")

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "order placed", entries[0].Message)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.Equal(t, int64(7), entries[0].ContextMap()["order_id"])

	_, ok := entries[1].ContextMap()["request_id"]
	assert.False(t, ok)
}
