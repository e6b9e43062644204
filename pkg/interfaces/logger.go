// Package interfaces holds the contracts the sync engine depends on but
// does not implement, so hosts can swap in their own providers.
package interfaces

import "context"

// Logger is the leveled logging contract used throughout the engine. The
// shape matches github.com/goliatone/go-logger, which means a host already
// using that package plugs in directly.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out named loggers, typically one per engine module.
// Returning the same instance for every name is a valid implementation.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is an optional capability: loggers that implement it return
// a child carrying the fields on every subsequent entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
