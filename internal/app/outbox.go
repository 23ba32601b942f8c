package app

import (
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/infrastructure/outbox"
	"github.com/saradorri/edrewards/internal/usecase/referral"
)

func (a *application) InitOutboxProcessor(outboxRepo domain.OutboxRepository, log *logger.Logger) (*outbox.Processor, domain.OutboxProcessor) {
	processor := outbox.NewProcessor(outboxRepo, outbox.Config{
		Interval:   a.config.Outbox.Interval,
		BatchSize:  a.config.Outbox.BatchSize,
		MaxRetries: a.config.Outbox.MaxRetries,
	}, log)
	return processor, processor
}

// RegisterOutboxHandlers binds event types to the use cases that apply them
func (a *application) RegisterOutboxHandlers(processor *outbox.Processor, referralUC *referral.ReferralUseCase) {
	processor.RegisterHandler(domain.EventTypeReferralEvaluation, referralUC.Handler())
}
