package app

import (
	"github.com/saradorri/edrewards/internal/domain"
	apphttp "github.com/saradorri/edrewards/internal/http"
	"github.com/saradorri/edrewards/internal/http/handlers"
	"github.com/saradorri/edrewards/internal/infrastructure/auth"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
)

func (a *application) InitHandlers(
	userUC domain.UserUseCase,
	earningsUC domain.EarningsUseCase,
	paymentUC domain.PaymentUseCase,
	ledgerUC domain.LedgerUseCase,
	withdrawalUC domain.WithdrawalUseCase,
	jwt auth.JWTService,
	log *logger.Logger,
) apphttp.Handlers {
	return apphttp.Handlers{
		User:        handlers.NewUserHandler(userUC, jwt),
		Machine:     handlers.NewMachineHandler(earningsUC),
		Payment:     handlers.NewPaymentHandler(paymentUC, log),
		Ad:          handlers.NewAdHandler(earningsUC),
		Transaction: handlers.NewTransactionHandler(ledgerUC),
		Withdrawal:  handlers.NewWithdrawalHandler(withdrawalUC),
		Admin:       handlers.NewAdminHandler(ledgerUC, withdrawalUC),
	}
}
