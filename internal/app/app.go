package app

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/saradorri/edrewards/internal/config"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// Application provides application level setup
type Application interface {
	Setup()
	GetContext() context.Context
}

// application represents context and configure file
type application struct {
	ctx    context.Context
	config *config.Config
}

// NewApplication creates a new application
func NewApplication(ctx context.Context) Application {
	return &application{ctx: ctx}
}

// GetContext returns application context
func (a *application) GetContext() context.Context {
	return a.ctx
}

// Setup creates a new fx application with all modules
func (a *application) Setup() {
	fmt.Println("[x] Starting ED Rewards Service...")

	path := flag.String("e", "./config", "env file directory")
	flag.Parse()

	err := a.setupViper(*path)
	if err != nil {
		log.Panic(err.Error())
	}

	app := fx.New(
		fx.WithLogger(func(log *logger.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx").Zap()}
		}),
		fx.Provide(
			a.InitLogger,
			a.InitDatabase,
			a.InitRedis,
			a.InitStore,
			a.InitUserRepository,
			a.InitNotificationRepository,
			a.InitOutboxRepository,
			a.InitJWTService,
			a.InitKeyLockManager,
			a.InitPaymentProvider,
			a.InitAdSessionStore,
			a.InitOutboxProcessor,
			a.InitLedgerUseCase,
			a.InitPaymentUseCase,
			a.InitPaymentPoller,
			a.InitReferralUseCase,
			a.InitEarningsUseCase,
			a.InitWithdrawalUseCase,
			a.InitUserUseCase,
			a.InitErrorHandler,
			a.InitHandlers,
			a.InitHTTPServer,
		),
		fx.Invoke(
			a.RegisterOutboxHandlers,
			a.RegisterLifecycle,
		),
	)

	app.Run()
}
