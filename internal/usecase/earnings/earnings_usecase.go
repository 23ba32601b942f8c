package earnings

import (
	"context"
	"net/http"
	"time"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/usecase/ledger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config holds the earning rules
type Config struct {
	ClaimPeriod    time.Duration
	AdSessionTTL   time.Duration
	AdMaxReward    decimal.Decimal
	AdMinWatchTime time.Duration
}

// EarningsUseCase runs the machine claim state machine and ad rewards
type EarningsUseCase struct {
	store    domain.Store
	ledger   *ledger.LedgerUseCase
	sessions domain.AdSessionStore
	policy   RewardPolicy
	cfg      Config
	now      func() time.Time
	logger   *logger.Logger
}

// NewEarningsUseCase creates a new earnings usecase with the clamp reward policy
func NewEarningsUseCase(store domain.Store, ledger *ledger.LedgerUseCase, sessions domain.AdSessionStore, cfg Config, logger *logger.Logger) *EarningsUseCase {
	if cfg.ClaimPeriod <= 0 {
		cfg.ClaimPeriod = 24 * time.Hour
	}
	if cfg.AdSessionTTL <= 0 {
		cfg.AdSessionTTL = 2 * time.Minute
	}
	logger.Info("EarningsUseCase initialized successfully",
		zap.Duration("claimPeriod", cfg.ClaimPeriod),
		zap.Duration("adSessionTTL", cfg.AdSessionTTL),
		zap.String("adMaxReward", cfg.AdMaxReward.String()))
	return &EarningsUseCase{
		store:    store,
		ledger:   ledger,
		sessions: sessions,
		policy:   ClampPolicy(cfg.AdMaxReward),
		cfg:      cfg,
		now:      time.Now,
		logger:   logger.Named("earnings"),
	}
}

// WithClock replaces the time source
func (uc *EarningsUseCase) WithClock(now func() time.Time) *EarningsUseCase {
	uc.now = now
	return uc
}

// WithRewardPolicy replaces the ad reward sizing
func (uc *EarningsUseCase) WithRewardPolicy(policy RewardPolicy) *EarningsUseCase {
	uc.policy = policy
	return uc
}

// ListMachineTypes lists the machine catalog
func (uc *EarningsUseCase) ListMachineTypes(ctx context.Context) ([]*domain.MachineType, error) {
	types, err := uc.store.Repos().Machines.ListTypes(ctx)
	if err != nil {
		uc.logger.WithContext(ctx).Error("Failed to list machine types", zap.Error(err))
		return nil, domain.NewPersistenceError("list machine types", err)
	}
	return types, nil
}

// ListMachines projects every machine of a user at the current server time
func (uc *EarningsUseCase) ListMachines(ctx context.Context, userID string) ([]domain.MachineProjection, error) {
	machines, err := uc.store.Repos().Machines.ListUserMachines(ctx, userID)
	if err != nil {
		uc.logger.WithContext(ctx).Error("Failed to list user machines", zap.String("userID", userID), zap.Error(err))
		return nil, domain.NewPersistenceError("list machines", err)
	}

	now := uc.now()
	projections := make([]domain.MachineProjection, 0, len(machines))
	for _, m := range machines {
		projections = append(projections, Project(m, uc.cfg.ClaimPeriod, now))
	}
	return projections, nil
}

// Activate starts a new earning period of an idle machine
func (uc *EarningsUseCase) Activate(ctx context.Context, userID, userMachineID string) (*domain.MachineProjection, error) {
	log := uc.logger.WithContext(ctx)
	log.Info("Activating machine", zap.String("userID", userID), zap.String("userMachineID", userMachineID))

	var projection domain.MachineProjection
	err := uc.store.WithinTransaction(ctx, func(ctx context.Context, repos domain.Repositories) error {
		machine, err := lockOwnedMachine(ctx, repos, userID, userMachineID)
		if err != nil {
			return err
		}

		now := uc.now()
		if Project(machine, uc.cfg.ClaimPeriod, now).State != domain.MachineStateIdle {
			log.Warn("Machine is not idle", zap.String("userMachineID", userMachineID))
			return domain.NewAppError(domain.ErrCodeNotActivatable, "Machine is already running or waiting to be claimed", http.StatusConflict, nil)
		}

		activated, err := repos.Machines.Activate(ctx, machine.ID, now)
		if err != nil {
			return domain.NewPersistenceError("activate machine", err)
		}
		if !activated {
			return domain.NewAppError(domain.ErrCodeNotActivatable, "Machine is already running", http.StatusConflict, nil)
		}

		machine.IsActive = true
		machine.ActivatedAt = &now
		projection = Project(machine, uc.cfg.ClaimPeriod, now)
		return nil
	})
	if err != nil {
		return nil, asAppError("activate machine", err)
	}

	log.Info("Machine activated", zap.String("userMachineID", userMachineID), zap.Timep("startTime", projection.StartTime))
	return &projection, nil
}

// lockOwnedMachine locks a machine row and checks that userID owns it
func lockOwnedMachine(ctx context.Context, repos domain.Repositories, userID, userMachineID string) (*domain.UserMachine, error) {
	machine, err := repos.Machines.GetUserMachineForUpdate(ctx, userMachineID)
	if err != nil {
		return nil, domain.NewPersistenceError("lock machine", err)
	}
	if machine == nil {
		return nil, domain.NewAppError(domain.ErrCodeMachineNotFound, "Machine not found", http.StatusNotFound, nil)
	}
	if machine.UserID != userID {
		return nil, domain.NewAppError(domain.ErrCodeNotOwner, "Machine belongs to another user", http.StatusForbidden, nil)
	}
	return machine, nil
}

func asAppError(operation string, err error) error {
	if _, ok := domain.IsAppError(err); ok {
		return err
	}
	return domain.NewPersistenceError(operation, err)
}
