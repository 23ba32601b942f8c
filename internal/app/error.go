package app

import (
	"github.com/saradorri/edrewards/internal/http/middleware"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
)

func (a *application) InitErrorHandler(log *logger.Logger) *middleware.ErrorHandler {
	return middleware.NewErrorHandler(log)
}
