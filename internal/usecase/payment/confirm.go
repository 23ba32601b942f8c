package payment

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/metrics"
	"github.com/saradorri/edrewards/internal/usecase/ledger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Confirmation sources
const (
	SourceWebhook = "webhook"
	SourceClient  = "client"
	SourcePoller  = "poller"
)

// Confirm applies a provider settlement to a purchase intent exactly once
func (uc *PaymentUseCase) Confirm(ctx context.Context, externalID, transID string, outcome domain.PaymentOutcome) (*domain.ConfirmResult, error) {
	return uc.confirm(ctx, externalID, transID, outcome, SourceWebhook)
}

func (uc *PaymentUseCase) confirm(ctx context.Context, externalID, transID string, outcome domain.PaymentOutcome, source string) (*domain.ConfirmResult, error) {
	log := uc.logger.WithContext(ctx)
	log.Info("Confirming payment",
		zap.String("externalID", externalID),
		zap.String("transID", transID),
		zap.String("outcome", string(outcome)),
		zap.String("source", source))

	var (
		result *domain.ConfirmResult
		out    *settlement
	)

	err := uc.store.WithinTransaction(ctx, func(ctx context.Context, repos domain.Repositories) error {
		t, err := repos.Transactions.GetByExternalIDForUpdate(ctx, externalID)
		if err != nil {
			return domain.NewPersistenceError("lock purchase", err)
		}
		if t == nil || t.Type != domain.TransactionTypeMachinePurchase {
			log.Warn("Confirmation for unknown transaction", zap.String("externalID", externalID))
			return domain.NewAppError(domain.ErrCodeUnknownTransaction, "Unknown transaction", http.StatusNotFound, nil)
		}

		if transID != "" && (t.ProviderReference == nil || *t.ProviderReference == "") {
			if err := repos.Transactions.SetProviderReference(ctx, t.ID, transID); err != nil {
				return domain.NewPersistenceError("store provider reference", err)
			}
			t.ProviderReference = &transID
		}

		switch t.Status {
		case domain.TransactionStatusCompleted, domain.TransactionStatusRefundPending:
			if outcome == domain.PaymentOutcomeFailed {
				log.Warn("Failure reported for settled purchase, ignoring",
					zap.String("externalID", externalID),
					zap.String("status", string(t.Status)))
			}
			result = resultOf(t, true)
			return nil

		case domain.TransactionStatusFailed:
			if outcome != domain.PaymentOutcomeSuccess {
				result = resultOf(t, true)
				return nil
			}
			// the intent was failed or expired locally but the payer was charged
			log.Warn("Provider reported success for a failed purchase, settling it",
				zap.String("externalID", externalID),
				zap.String("userID", t.UserID),
				zap.String("source", source))
		}

		switch outcome {
		case domain.PaymentOutcomeSuccess:
			out, err = uc.settle(ctx, repos, t)
			if err != nil {
				return err
			}
		case domain.PaymentOutcomeFailed:
			if _, err := repos.Transactions.UpdateStatus(ctx, t.ID, domain.TransactionStatusPending, domain.TransactionStatusFailed); err != nil {
				return domain.NewPersistenceError("fail purchase", err)
			}
			t.Status = domain.TransactionStatusFailed
		}
		result = resultOf(t, false)
		return nil
	})
	if err != nil {
		metrics.PaymentConfirmationsTotal.WithLabelValues(source, "error").Inc()
		return nil, asAppError("confirm payment", err)
	}

	label := string(result.Status)
	if result.AlreadyProcessed {
		label = "already_processed"
	}
	metrics.PaymentConfirmationsTotal.WithLabelValues(source, label).Inc()

	if out != nil {
		if out.event != nil {
			uc.outbox.Dispatch(out.event)
		}
		ledger.Notify(ctx, uc.store, uc.logger, out.notice)
	}

	log.Info("Payment confirmation applied",
		zap.String("externalID", externalID),
		zap.String("status", string(result.Status)),
		zap.Bool("granted", result.Granted),
		zap.Bool("alreadyProcessed", result.AlreadyProcessed))
	return result, nil
}

// settlement is what a successful payment leaves to do once its unit of work commits
type settlement struct {
	event  *domain.OutboxEvent
	notice *domain.Notification
}

// settle grants the machine of a paid purchase and schedules referral evaluation. A payment
// for a type the user already owns grants nothing and parks the row as refund_pending.
func (uc *PaymentUseCase) settle(ctx context.Context, repos domain.Repositories, t *domain.Transaction) (*settlement, error) {
	log := uc.logger.WithContext(ctx)

	machineTypeID := machineTypeOf(t)
	machineType, err := repos.Machines.GetType(ctx, machineTypeID)
	if err != nil {
		return nil, domain.NewPersistenceError("get machine type", err)
	}
	if machineType == nil {
		log.Error("Purchase references a missing machine type",
			zap.String("externalID", t.ExternalID),
			zap.String("machineTypeID", machineTypeID))
		return nil, domain.NewAppError(domain.ErrCodeMachineTypeNotFound, "Machine type not found", http.StatusNotFound, nil)
	}

	now := uc.now()
	created, err := repos.Machines.CreateUserMachine(ctx, &domain.UserMachine{
		ID:                 uuid.NewString(),
		UserID:             t.UserID,
		MachineTypeID:      machineTypeID,
		TotalEarned:        decimal.Zero,
		PurchaseExternalID: t.ExternalID,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return nil, domain.NewPersistenceError("grant machine", err)
	}

	to := domain.TransactionStatusCompleted
	if !created {
		to = domain.TransactionStatusRefundPending
	}
	moved, err := repos.Transactions.UpdateStatus(ctx, t.ID, t.Status, to)
	if err != nil {
		return nil, domain.NewPersistenceError("settle purchase", err)
	}
	if !moved {
		return nil, domain.NewAppError(domain.ErrCodeTransactionInvalidStatus, "Transaction changed while settling", http.StatusConflict, nil)
	}
	t.Status = to

	if !created {
		log.Error("Paid purchase for an already owned machine, refund required",
			zap.String("externalID", t.ExternalID),
			zap.String("userID", t.UserID),
			zap.String("machineTypeID", machineTypeID),
			zap.String("amount", t.Amount.Neg().String()))
		return &settlement{notice: &domain.Notification{
			UserID:    t.UserID,
			Type:      domain.NotificationTypePurchase,
			Title:     "Payment will be refunded",
			Message:   fmt.Sprintf("You already own a %s. Your payment of %s XAF will be refunded.", machineType.Name, t.Amount.Neg().String()),
			DedupKey:  "purchase-refund:" + t.ExternalID,
			CreatedAt: now,
		}}, nil
	}

	event := &domain.OutboxEvent{
		ID:        uuid.NewString(),
		Type:      domain.EventTypeReferralEvaluation,
		Data:      domain.JSONB{"user_id": t.UserID, "external_id": t.ExternalID},
		Status:    domain.EventStatusPending,
		CreatedAt: now,
	}
	if err := repos.Outbox.Save(ctx, event); err != nil {
		return nil, domain.NewPersistenceError("save referral event", err)
	}

	log.Info("Machine granted",
		zap.String("externalID", t.ExternalID),
		zap.String("userID", t.UserID),
		zap.String("machineTypeID", machineTypeID))
	return &settlement{
		event: event,
		notice: &domain.Notification{
			UserID:    t.UserID,
			Type:      domain.NotificationTypePurchase,
			Title:     "Machine purchased",
			Message:   fmt.Sprintf("Your %s is ready. Activate it to start earning.", machineType.Name),
			DedupKey:  "purchase:" + t.ExternalID,
			CreatedAt: now,
		},
	}, nil
}

// ReconcilePayment resolves one of the user's pending intents by asking the provider
func (uc *PaymentUseCase) ReconcilePayment(ctx context.Context, userID, externalID string) (*domain.ConfirmResult, error) {
	log := uc.logger.WithContext(ctx)

	t, err := uc.store.Repos().Transactions.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, domain.NewPersistenceError("get purchase", err)
	}
	if t == nil || t.UserID != userID || t.Type != domain.TransactionTypeMachinePurchase {
		return nil, domain.NewAppError(domain.ErrCodeUnknownTransaction, "Unknown transaction", http.StatusNotFound, nil)
	}
	if t.Status != domain.TransactionStatusPending {
		return resultOf(t, true), nil
	}

	payment, err := uc.checkProvider(ctx, t)
	if err != nil {
		log.Warn("Failed to check payment with provider", zap.String("externalID", externalID), zap.Error(err))
		return nil, domain.NewProviderUnavailableError(err)
	}
	if payment == nil {
		return resultOf(t, false), nil
	}

	return uc.confirm(ctx, externalID, payment.TransID, payment.Status.Outcome(), SourceClient)
}
