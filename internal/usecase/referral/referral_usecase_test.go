package referral

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/testutil/memstore"
	"github.com/saradorri/edrewards/internal/usecase/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUser(id, code string, referredBy *string) *domain.User {
	now := time.Now()
	return &domain.User{
		ID:           id,
		Username:     id,
		Role:         domain.RoleUser,
		EDBalance:    decimal.Zero,
		TotalEarned:  decimal.Zero,
		ReferralCode: code,
		ReferredBy:   referredBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func giveMachine(store *memstore.Store, id, userID, machineTypeID string) {
	store.PutMachine(&domain.UserMachine{
		ID:            id,
		UserID:        userID,
		MachineTypeID: machineTypeID,
		TotalEarned:   decimal.Zero,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	})
}

func newTestReferral(t *testing.T) (*ReferralUseCase, *memstore.Store) {
	t.Helper()
	log := logger.NewLogger("test", "debug")
	store := memstore.New()
	code := "REFERRER"
	store.PutUser(createTestUser("referrer", code, nil))
	store.PutUser(createTestUser("referred", "REFERRED", &code))
	return NewReferralUseCase(store, ledger.NewLedgerUseCase(store, log), 0, log), store
}

func TestAwardIfEligibleRepeatedCallsPayOnce(t *testing.T) {
	uc, store := newTestReferral(t)
	giveMachine(store, "m1", "referred", "starter")

	awarded := 0
	for i := 0; i < 5; i++ {
		result, err := uc.AwardIfEligible(context.Background(), "referred")
		require.NoError(t, err)
		if result.Awarded {
			awarded++
			assert.Equal(t, DefaultBonus, result.Amount)
			assert.Equal(t, "referrer", result.ReferrerID)
		} else {
			assert.Equal(t, domain.ReferralReasonAlreadyPaid, result.Reason)
		}
	}

	assert.Equal(t, 1, awarded)
	assert.Equal(t, int64(1000), store.User("referrer").WalletBalance)
	assert.Len(t, store.Transactions("referrer", domain.TransactionTypeReferralBonus), 1)
	assert.Len(t, store.Notifications("referrer"), 1)

	referrals, err := store.Repos().Referrals.ListByReferrer(context.Background(), "referrer")
	require.NoError(t, err)
	require.Len(t, referrals, 1)
	assert.Equal(t, domain.ReferralStatusCompleted, referrals[0].Status)
	assert.Equal(t, int64(1000), referrals[0].Bonus)
}

func TestAwardIfEligibleSurvivesNotificationFailure(t *testing.T) {
	uc, store := newTestReferral(t)
	giveMachine(store, "m1", "referred", "starter")
	store.FailNotifications(errors.New("notifications table unavailable"))

	result, err := uc.AwardIfEligible(context.Background(), "referred")
	require.NoError(t, err)
	assert.True(t, result.Awarded)
	assert.Equal(t, int64(1000), store.User("referrer").WalletBalance)
	assert.Len(t, store.Transactions("referrer", domain.TransactionTypeReferralBonus), 1)
	assert.Empty(t, store.Notifications("referrer"))

	again, err := uc.AwardIfEligible(context.Background(), "referred")
	require.NoError(t, err)
	assert.False(t, again.Awarded)
	assert.Equal(t, domain.ReferralReasonAlreadyPaid, again.Reason)
}

func TestAwardIfEligibleConcurrentCallsPayOnce(t *testing.T) {
	uc, store := newTestReferral(t)
	giveMachine(store, "m1", "referred", "starter")

	var wg sync.WaitGroup
	var mu sync.Mutex
	awarded := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := uc.AwardIfEligible(context.Background(), "referred")
			if assert.NoError(t, err) && result.Awarded {
				mu.Lock()
				awarded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, awarded)
	assert.Equal(t, int64(1000), store.User("referrer").WalletBalance)
}

func TestAwardIfEligibleIneligible(t *testing.T) {
	ctx := context.Background()

	t.Run("No_Referrer", func(t *testing.T) {
		uc, store := newTestReferral(t)
		giveMachine(store, "m1", "referrer", "starter")

		result, err := uc.AwardIfEligible(ctx, "referrer")
		require.NoError(t, err)
		assert.False(t, result.Awarded)
		assert.Equal(t, domain.ReferralReasonNoReferrer, result.Reason)
	})

	t.Run("Unknown_Referral_Code", func(t *testing.T) {
		uc, store := newTestReferral(t)
		missing := "NOBODY"
		store.PutUser(createTestUser("orphan", "ORPHAN", &missing))
		giveMachine(store, "m1", "orphan", "starter")

		result, err := uc.AwardIfEligible(ctx, "orphan")
		require.NoError(t, err)
		assert.Equal(t, domain.ReferralReasonReferrerNotFound, result.Reason)
	})

	t.Run("Self_Referral", func(t *testing.T) {
		uc, store := newTestReferral(t)
		self := "SELF"
		store.PutUser(createTestUser("self", self, &self))
		giveMachine(store, "m1", "self", "starter")

		result, err := uc.AwardIfEligible(ctx, "self")
		require.NoError(t, err)
		assert.Equal(t, domain.ReferralReasonReferrerNotFound, result.Reason)
		assert.Equal(t, int64(0), store.User("self").WalletBalance)
	})

	t.Run("Second_Machine_Is_Not_First_Purchase", func(t *testing.T) {
		uc, store := newTestReferral(t)
		giveMachine(store, "m1", "referred", "starter")
		giveMachine(store, "m2", "referred", "miner")

		result, err := uc.AwardIfEligible(ctx, "referred")
		require.NoError(t, err)
		assert.Equal(t, domain.ReferralReasonNotFirstPurchase, result.Reason)
		assert.Equal(t, "referrer", result.ReferrerID)
		assert.Equal(t, int64(0), store.User("referrer").WalletBalance)
	})

	t.Run("Unknown_User", func(t *testing.T) {
		uc, _ := newTestReferral(t)

		_, err := uc.AwardIfEligible(ctx, "ghost")
		assert.True(t, domain.HasCode(err, domain.ErrCodeUserNotFound), "got %v", err)
	})
}

func TestAwardIfEligiblePersistenceFailure(t *testing.T) {
	uc, store := newTestReferral(t)
	giveMachine(store, "m1", "referred", "starter")

	store.FailNext(1)
	_, err := uc.AwardIfEligible(context.Background(), "referred")
	assert.True(t, domain.HasCode(err, domain.ErrCodePersistence), "got %v", err)
	assert.Equal(t, int64(0), store.User("referrer").WalletBalance)

	result, err := uc.AwardIfEligible(context.Background(), "referred")
	require.NoError(t, err)
	assert.True(t, result.Awarded)
}

func TestHandler(t *testing.T) {
	uc, store := newTestReferral(t)
	giveMachine(store, "m1", "referred", "starter")
	handle := uc.Handler()

	err := handle(context.Background(), &domain.OutboxEvent{ID: "e1", Type: domain.EventTypeReferralEvaluation, Data: domain.JSONB{}})
	assert.Error(t, err)

	err = handle(context.Background(), &domain.OutboxEvent{
		ID:   "e2",
		Type: domain.EventTypeReferralEvaluation,
		Data: domain.JSONB{"user_id": "referred", "external_id": "purchase:starter:referred:1"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), store.User("referrer").WalletBalance)
}
