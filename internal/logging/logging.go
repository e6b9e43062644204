package logging

import (
	"context"

	"github.com/goliatone/go-content-sync/pkg/interfaces"
)

type noopLogger struct{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}
func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}

// NoOp returns a logger that discards every entry. Used as the default when
// no provider is configured so call sites never nil-check.
func NoOp() interfaces.Logger {
	return noopLogger{}
}
