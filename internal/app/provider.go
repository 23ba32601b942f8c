package app

import (
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/external/provider"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
)

func (a *application) InitPaymentProvider(log *logger.Logger) domain.PaymentProvider {
	return provider.NewPaymentProvider(provider.Config{
		BaseURL:      a.config.Provider.URL,
		APIUser:      a.config.Provider.APIUser,
		APIKey:       a.config.Provider.APIKey,
		Timeout:      a.config.Provider.Timeout,
		RetryMax:     a.config.Provider.RetryMax,
		RetryWaitMin: a.config.Provider.RetryWaitMin,
		RetryWaitMax: a.config.Provider.RetryWaitMax,
	}, log)
}
