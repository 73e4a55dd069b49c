package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "trackiq/internal/core/context"
)

func observed(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return &Logger{zap.New(core).Sugar()}, logs
}

func TestWithContext(t *testing.T) {
	l, logs := observed(zapcore.InfoLevel)

	ctx := appctx.WithTrace(context.Background(), &appctx.TraceContext{RequestID: "req-1", TraceID: "tr-1"})
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "u-9", Role: "manager"})

	l.WithContext(ctx).Infow("posted", "qty", 5)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "tr-1", fields["trace_id"])
	assert.Equal(t, "u-9", fields["user_id"])
	assert.Equal(t, "manager", fields["role"])
	assert.EqualValues(t, 5, fields["qty"])
	assert.NotContains(t, fields, "span_id")
}

func TestWithContext_Empty(t *testing.T) {
	l, _ := observed(zapcore.InfoLevel)
	assert.Same(t, l, l.WithContext(context.Background()))
}

func TestPackageHelpers(t *testing.T) {
	l, logs := observed(zapcore.WarnLevel)
	SetDefault(l)
	t.Cleanup(func() { SetDefault(Nop()) })

	ctx := context.Background()
	Info(ctx, "dropped")
	Warn(ctx, "kept", "brand", "ECO-001")

	// a logger in the context wins over the default
	scoped, scopedLogs := observed(zapcore.DebugLevel)
	Debug(WithLogger(ctx, scoped), "scoped")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, 1, scopedLogs.Len())
}

func TestNew(t *testing.T) {
	l, err := New(Config{Level: "bogus", OutputPaths: []string{"stdout"}, Service: "trackiq"})
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
}
