package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

const (
	rootModule       = "donations"
	editorModule     = "donations.editor"
	stylesModule     = "donations.styles"
	serializerModule = "donations.serializer"
	paymentsModule   = "donations.payments"
	commandsModule   = "donations.commands"
	httpModule       = "donations.http"
	pagesModule      = "donations.pages"
)

const (
	fieldPageID         = "page_id"
	fieldRevenueProgram = "revenue_program"
	fieldOperation      = "operation"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field so entries can be filtered predictably.
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

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// EditorLogger returns the logger namespace reserved for edit sessions and saves.
func EditorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, editorModule)
}

// StylesLogger returns the logger namespace reserved for style resources.
func StylesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, stylesModule)
}

// SerializerLogger returns the logger namespace reserved for request body encoding.
func SerializerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, serializerModule)
}

// PaymentsLogger returns the logger namespace reserved for checkout flows.
func PaymentsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, paymentsModule)
}

// CommandsLogger returns the logger namespace reserved for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// HTTPLogger returns the logger namespace reserved for the page API.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// PagesLogger returns the logger namespace reserved for page storage.
func PagesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pagesModule)
}

// WithPageContext enriches the logger with page identity fields. Empty values
// are ignored.
func WithPageContext(logger interfaces.Logger, pageID, revenueProgram, operation string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(pageID); trimmed != "" {
		fields[fieldPageID] = trimmed
	}
	if trimmed := strings.TrimSpace(revenueProgram); trimmed != "" {
		fields[fieldRevenueProgram] = trimmed
	}
	if trimmed := strings.TrimSpace(operation); trimmed != "" {
		fields[fieldOperation] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

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
