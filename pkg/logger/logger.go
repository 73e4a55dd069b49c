// Package logger is the zap-backed structured logger shared by every binary.
// Request-scoped fields (request, trace, user) are pulled from the context.
package logger

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "trackiq/internal/core/context"
)

// Logger is a sugared zap logger.
type Logger struct {
	*zap.SugaredLogger
}

// Config selects level, encoding and sinks.
type Config struct {
	Level       string // debug, info, warn, error; anything else means info
	Development bool   // colored console output
	OutputPaths []string
	Service     string
}

// New builds a Logger. JSON with ISO8601 timestamps unless Development is set.
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc.EncoderConfig.TimeKey = "time"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}

	opts := []zap.Option{zap.AddCallerSkip(1)}
	if cfg.Service != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.Service)))
	}
	z, err := zc.Build(opts...)
	if err != nil {
		return nil, err
	}
	return &Logger{z.Sugar()}, nil
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

var fallback atomic.Pointer[Logger]

// SetDefault installs l for the package-level helpers.
func SetDefault(l *Logger) {
	fallback.Store(l)
}

// Default returns the logger given to SetDefault. Before that it lazily
// creates an info-level JSON logger on stdout.
func Default() *Logger {
	if l := fallback.Load(); l != nil {
		return l
	}
	l, err := New(Config{OutputPaths: []string{"stdout"}})
	if err != nil {
		l = Nop()
	}
	if fallback.CompareAndSwap(nil, l) {
		return l
	}
	return fallback.Load()
}

// WithContext attaches the request, trace and user fields carried by ctx.
// It returns l unchanged when there are none.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	fields := append(appctx.GetTrace(ctx).LogFields(), appctx.GetUser(ctx).LogFields()...)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{l.SugaredLogger.With(keysAndValues...)}
}

// WithComponent tags entries with the subsystem that wrote them.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

type ctxKey struct{}

// WithLogger stores l in ctx; FromContext prefers it over Default.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the context's logger, or Default, enriched with the
// context's fields.
func FromContext(ctx context.Context) *Logger {
	l, ok := ctx.Value(ctxKey{}).(*Logger)
	if !ok {
		l = Default()
	}
	return l.WithContext(ctx)
}

func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Debugw(msg, keysAndValues...)
}

func Info(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Infow(msg, keysAndValues...)
}

func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Warnw(msg, keysAndValues...)
}

func Error(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Errorw(msg, keysAndValues...)
}
