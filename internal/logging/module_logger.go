package logging

import (
	"github.com/goliatone/go-content-sync/pkg/interfaces"
)

const (
	RootModule    = "sync"
	GitHubModule  = "sync.github"
	ParserModule  = "sync.parser"
	StoreModule   = "sync.store"
	WebhookModule = "sync.webhook"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = RootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}
