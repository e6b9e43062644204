package logging

import (
	"maps"

	"github.com/goliatone/go-content-sync/pkg/interfaces"
)

// WithFields returns a child logger carrying fields, when the
// implementation supports the FieldsLogger extension; otherwise the logger
// is returned unchanged. The map is copied so later caller mutations do not
// leak into log entries.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}

	copied := make(map[string]any, len(fields))
	maps.Copy(copied, fields)
	return fieldsLogger.WithFields(copied)
}
