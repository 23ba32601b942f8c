package earnings

import (
	"context"
	"fmt"
	"net/http"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// claimExternalID keys a claim by its period so a retried claim cannot credit twice
func claimExternalID(m *domain.UserMachine) string {
	return fmt.Sprintf("claim:%s:%d", m.ID, m.ActivatedAt.Unix())
}

// Claim credits the daily earnings of a finished period and returns the machine to idle
func (uc *EarningsUseCase) Claim(ctx context.Context, userID, userMachineID string) (*domain.ClaimResult, error) {
	log := uc.logger.WithContext(ctx)
	log.Info("Claiming machine earnings", zap.String("userID", userID), zap.String("userMachineID", userMachineID))

	var result *domain.ClaimResult
	err := uc.store.WithinTransaction(ctx, func(ctx context.Context, repos domain.Repositories) error {
		machine, err := lockOwnedMachine(ctx, repos, userID, userMachineID)
		if err != nil {
			return err
		}

		now := uc.now()
		if claimedCurrentPeriod(machine) {
			result, err = uc.previousClaim(ctx, repos, machine)
			return err
		}

		projection := Project(machine, uc.cfg.ClaimPeriod, now)
		if projection.State != domain.MachineStateClaimable {
			log.Warn("Machine is not claimable",
				zap.String("userMachineID", userMachineID),
				zap.String("state", string(projection.State)),
				zap.Int64("remainingSeconds", projection.RemainingSeconds))
			metrics.ClaimsTotal.WithLabelValues("not_claimable").Inc()
			return domain.NewAppError(domain.ErrCodeNotClaimable,
				fmt.Sprintf("Machine is not claimable yet, %d seconds remaining", projection.RemainingSeconds),
				http.StatusConflict, nil)
		}

		if machine.MachineType == nil {
			return domain.NewAppError(domain.ErrCodeMachineTypeNotFound, "Machine type not found", http.StatusNotFound, nil)
		}
		amount := machine.MachineType.DailyEarnings

		applied, err := uc.ledger.ApplyInTx(ctx, repos, domain.ApplyRequest{
			UserID:     userID,
			Type:       domain.TransactionTypeEarningClaim,
			Amount:     amount,
			Currency:   domain.CurrencyED,
			ExternalID: claimExternalID(machine),
			Metadata: domain.JSONB{
				"user_machine_id": machine.ID,
				"machine_type_id": machine.MachineTypeID,
				"period_start":    machine.ActivatedAt.Unix(),
			},
		})
		if err != nil {
			return err
		}

		if err := repos.Machines.RecordClaim(ctx, machine.ID, amount, now); err != nil {
			return domain.NewPersistenceError("record claim", err)
		}

		machine.IsActive = false
		machine.LastClaimTime = &now
		machine.TotalEarned = machine.TotalEarned.Add(amount)

		balance := applied.Balance
		result = &domain.ClaimResult{
			UserMachineID:  machine.ID,
			CreditedAmount: amount,
			TransactionID:  applied.Transaction.ID,
			Balance:        &balance,
			Machine:        Project(machine, uc.cfg.ClaimPeriod, now),
		}
		return nil
	})
	if err != nil {
		if !domain.HasCode(err, domain.ErrCodeNotClaimable) {
			metrics.ClaimsTotal.WithLabelValues("error").Inc()
		}
		return nil, asAppError("claim earnings", err)
	}

	if result.AlreadyClaimed {
		metrics.ClaimsTotal.WithLabelValues("already_claimed").Inc()
	} else {
		metrics.ClaimsTotal.WithLabelValues("claimed").Inc()
	}
	log.Info("Machine earnings claimed",
		zap.String("userMachineID", userMachineID),
		zap.String("amount", result.CreditedAmount.String()),
		zap.Bool("alreadyClaimed", result.AlreadyClaimed))
	return result, nil
}

// previousClaim answers a retry of the last claimed period with the stored credit
func (uc *EarningsUseCase) previousClaim(ctx context.Context, repos domain.Repositories, machine *domain.UserMachine) (*domain.ClaimResult, error) {
	stored, err := repos.Transactions.GetByExternalID(ctx, claimExternalID(machine))
	if err != nil {
		return nil, domain.NewPersistenceError("get claim transaction", err)
	}
	if stored == nil {
		return nil, domain.NewAppError(domain.ErrCodeNotClaimable, "Machine is idle, activate it to start a new period", http.StatusConflict, nil)
	}

	user, err := repos.Users.GetByID(ctx, machine.UserID)
	if err != nil {
		return nil, domain.NewPersistenceError("get user", err)
	}

	result := &domain.ClaimResult{
		UserMachineID:  machine.ID,
		CreditedAmount: stored.Amount,
		AlreadyClaimed: true,
		TransactionID:  stored.ID,
		Machine:        Project(machine, uc.cfg.ClaimPeriod, uc.now()),
	}
	if user != nil {
		balance := domain.BalanceOf(user)
		result.Balance = &balance
	}
	return result, nil
}
