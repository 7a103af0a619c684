package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davidbz/sgrep/internal/observability"
)

func TestEventBus_Publish(t *testing.T) {
	t.Run("should log event with sorted data fields", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		bus := observability.NewEventBus(zap.New(core))

		ctx := observability.WithRunID(context.Background(), "run-1")
		bus.Publish(ctx, "pattern.compiled", map[string]interface{}{
			"pattern": `\d+`,
			"dialect": "re2",
		})

		entries := logs.All()
		require.Len(t, entries, 1)
		require.Equal(t, "pattern.compiled", entries[0].Message)
		require.Equal(t, zapcore.DebugLevel, entries[0].Level)

		fields := entries[0].ContextMap()
		require.Equal(t, "run-1", fields["run_id"])
		require.Equal(t, `\d+`, fields["pattern"])
		require.Equal(t, "re2", fields["dialect"])
	})

	t.Run("should ignore events without a logger", func(t *testing.T) {
		bus := observability.NewEventBus(nil)

		require.NotPanics(t, func() {
			bus.Publish(context.Background(), "noop", nil)
		})
	})
}

func TestContext_RoundTrip(t *testing.T) {
	ctx := context.Background()
	require.Empty(t, observability.GetRunID(ctx))
	require.Empty(t, observability.GetProvider(ctx))
	require.Empty(t, observability.GetModel(ctx))

	ctx = observability.WithRunID(ctx, "abc")
	ctx = observability.WithProvider(ctx, "openai")
	ctx = observability.WithModel(ctx, "gpt-3.5-turbo")

	require.Equal(t, "abc", observability.GetRunID(ctx))
	require.Equal(t, "openai", observability.GetProvider(ctx))
	require.Equal(t, "gpt-3.5-turbo", observability.GetModel(ctx))
	require.NotEqual(t, observability.GenerateRunID(), observability.GenerateRunID())
}

func TestInitLogger(t *testing.T) {
	t.Run("should build console logger", func(t *testing.T) {
		logger, err := observability.InitLogger(&observability.Config{Level: "debug", Format: "console"})
		require.NoError(t, err)
		require.NotNil(t, logger)
		require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("should build json logger at error level", func(t *testing.T) {
		logger, err := observability.InitLogger(&observability.Config{Level: "error", Format: "json"})
		require.NoError(t, err)
		require.False(t, logger.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("should reject unknown level", func(t *testing.T) {
		_, err := observability.InitLogger(&observability.Config{Level: "loud", Format: "json"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("should reject unknown format", func(t *testing.T) {
		_, err := observability.InitLogger(&observability.Config{Level: "info", Format: "xml"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid log format")
	})
}
