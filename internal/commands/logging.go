package commands

import (
	"strings"

	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

// CommandLogger returns a module-scoped logger for command handlers with
// consistent component fields.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, "donations.commands."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
