package transformer

import (
	"github.com/hashicorp/go-hclog"

	"github.com/katasec/dstream-transformer/internal/logging"
)

// Default logger
var pluginLogger hclog.Logger

// SetLogger sets the global logger for the transformer package
func SetLogger(logger hclog.Logger) {
	pluginLogger = logger
}

// GetLogger returns the global logger for the transformer package
func GetLogger() hclog.Logger {
	if pluginLogger == nil {
		// Bare logger for clean output with no prefixes
		pluginLogger = logging.SetupBareLogger()
	}
	return pluginLogger
}
