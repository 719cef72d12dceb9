// Package telemetry scopes logging and metrics to a single conversation
// instance: there is no process-wide logger or registry, matching the
// spec's "no process-wide mutable state" requirement. Each Conversation
// holds its own *Logger and optional *Metrics rather than reaching for a
// global.
package telemetry

import "go.uber.org/zap"

// Logger wraps a zap logger; With returns a Logger whose every entry
// carries the given fields.
type Logger struct {
	z *zap.Logger
}

// NewLogger builds a Logger around a production zap config. Callers that
// don't want console output (tests, batch tooling that captures logs
// itself) should use NewNoOpLogger instead.
func NewLogger() *Logger {
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

// NewNoOpLogger returns a Logger that discards everything, for tests and
// for hosts that manage their own logging pipeline.
func NewNoOpLogger() *Logger {
	return &Logger{z: zap.NewNop()}
}

// With returns a Logger that always includes the given fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{z: l.z.With(fields...)}
}

func (l *Logger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }
func (l *Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }

// Sync flushes any buffered log entries. Hosts should call this before
// process exit; the engine itself never exits.
func (l *Logger) Sync() error { return l.z.Sync() }
