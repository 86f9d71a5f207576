package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is the private key type for storing the logger in a context.
type contextKey struct{}

// ToContext returns a copy of ctx carrying the provided logger.
func ToContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in ctx, or the global one.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*zap.SugaredLogger); ok && l != nil {
			return l
		}
	}

	return global
}

// WithName returns a context whose logger is named (or sub-named) with name.
func WithName(ctx context.Context, name string) context.Context {
	return ToContext(ctx, FromContext(ctx).Named(name))
}

// WithKV returns a context whose logger always carries the given key-value pair.
func WithKV(ctx context.Context, key string, value any) context.Context {
	return ToContext(ctx, FromContext(ctx).With(key, value))
}

// CronLogger adapts the context logger to the robfig/cron Logger interface.
// Cron's chatty info records go to debug level.
type CronLogger struct {
	// log is the sugared logger receiving cron records.
	log *zap.SugaredLogger
}

// NewCronLogger builds a cron logger from the logger stored in ctx.
func NewCronLogger(ctx context.Context) CronLogger {
	return CronLogger{
		log: FromContext(ctx).Named("cron"),
	}
}

// Info implements cron.Logger.
func (c CronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debugw(msg, keysAndValues...)
}

// Error implements cron.Logger.
func (c CronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
