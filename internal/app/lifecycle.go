package app

import (
	"context"

	"github.com/saradorri/edrewards/internal/http"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/infrastructure/outbox"
	"github.com/saradorri/edrewards/internal/usecase/payment"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RegisterLifecycle starts the HTTP server and background loops with the app and
// stops them in reverse order
func (a *application) RegisterLifecycle(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	server *http.Server,
	processor *outbox.Processor,
	poller *payment.Poller,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			processor.StartBackgroundProcessing()
			return nil
		},
		OnStop: func(context.Context) error {
			processor.StopBackgroundProcessing()
			return nil
		},
	})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			poller.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			poller.Stop()
			return nil
		},
	})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := server.Start(); err != nil {
					log.Error("HTTP server stopped unexpectedly", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}
