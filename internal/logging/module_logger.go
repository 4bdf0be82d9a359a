// Package logging resolves module-scoped loggers for the docmark service
// layer. The parsing and validation packages do not log.
package logging

import (
	"context"

	"github.com/goliatone/go-docmark/pkg/interfaces"
)

const (
	rootModule      = "docmark"
	crossrefModule  = "docmark.crossref"
	workspaceModule = "docmark.workspace"
	historyModule   = "docmark.history"
	commandsModule  = "docmark.commands"
)

// ModuleLogger returns the provider's logger for module tagged with a
// module field. A nil provider yields a no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}
	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// RootLogger is used by the public service.
func RootLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, rootModule)
}

// CrossrefLogger is used by the cross-document validator runs.
func CrossrefLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, crossrefModule)
}

// WorkspaceLogger is used while discovering templates and artifacts.
func WorkspaceLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, workspaceModule)
}

// HistoryLogger is used by run history repositories.
func HistoryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, historyModule)
}

// CommandsLogger is used by command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
