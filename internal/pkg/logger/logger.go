package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

var (
	mx   sync.RWMutex
	base = newDefault()
)

func newDefault() *zap.SugaredLogger {
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// Init replaces the process logger with one at the given level
// ("debug", "info", "warn", "error").
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	Set(l.Sugar())
	return nil
}

// Set swaps the process logger; tests use it with zap.NewNop or an observer core.
func Set(l *zap.SugaredLogger) {
	mx.Lock()
	defer mx.Unlock()
	base = l
}

func Sync() {
	_ = get().Sync()
}

// WithFields returns a context whose log lines carry the given key/value pairs.
func WithFields(ctx context.Context, keysAndValues ...interface{}) context.Context {
	fields, _ := ctx.Value(ctxKey{}).([]interface{})
	merged := make([]interface{}, 0, len(fields)+len(keysAndValues))
	merged = append(merged, fields...)
	merged = append(merged, keysAndValues...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

func get() *zap.SugaredLogger {
	mx.RLock()
	defer mx.RUnlock()
	return base
}

func from(ctx context.Context) *zap.SugaredLogger {
	l := get()
	if ctx == nil {
		return l
	}
	if fields, ok := ctx.Value(ctxKey{}).([]interface{}); ok && len(fields) > 0 {
		return l.With(fields...)
	}
	return l
}

func Debugf(ctx context.Context, template string, args ...interface{}) {
	from(ctx).Debugf(template, args...)
}

func Info(ctx context.Context, msg string) {
	from(ctx).Info(msg)
}

func Infof(ctx context.Context, template string, args ...interface{}) {
	from(ctx).Infof(template, args...)
}

func Warnf(ctx context.Context, template string, args ...interface{}) {
	from(ctx).Warnf(template, args...)
}

func Error(ctx context.Context, msg string) {
	from(ctx).Error(msg)
}

func Errorf(ctx context.Context, template string, args ...interface{}) {
	from(ctx).Errorf(template, args...)
}

func Fatal(ctx context.Context, err error) {
	from(ctx).Fatal(err)
}
