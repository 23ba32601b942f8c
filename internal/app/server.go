package app

import (
	"github.com/saradorri/edrewards/internal/http"
	"github.com/saradorri/edrewards/internal/http/middleware"
	"github.com/saradorri/edrewards/internal/infrastructure/auth"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
)

// InitHTTPServer initializes the HTTP server with all dependencies
func (a *application) InitHTTPServer(
	handlers http.Handlers,
	jwtService auth.JWTService,
	errorHandler *middleware.ErrorHandler,
	log *logger.Logger,
) (*http.Server, error) {
	return http.NewServer(jwtService, handlers, errorHandler, http.Options{
		Address:        a.config.GetServerAddress(),
		RequestTimeout: a.config.Server.RequestTimeout,
		WebhookSecret:  a.config.Server.WebhookSecret,
	}, log)
}
