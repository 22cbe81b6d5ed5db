package app

import (
	"strings"

	"github.com/dleutenegger/breez-sdk/pkg/logger"
)

// ConfigureLogging initialises the global logger. An explicit override (e.g. a
// CLI flag) wins over the configured level, which in turn defaults to info.
func ConfigureLogging(cfg LogConfig, override string) error {
	level := strings.TrimSpace(override)
	if level == "" {
		level = strings.TrimSpace(cfg.Level)
	}
	if level == "" {
		level = "info"
	}
	return logger.Init(level)
}
