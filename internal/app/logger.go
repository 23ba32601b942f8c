package app

import (
	"github.com/saradorri/edrewards/internal/config"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
)

// InitLogger creates a new logger instance
func (a *application) InitLogger() *logger.Logger {
	return logger.NewLogger(config.GetEnvironment(), a.config.Log.Level)
}
