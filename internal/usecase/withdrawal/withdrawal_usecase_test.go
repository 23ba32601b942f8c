package withdrawal

import (
	"context"
	"errors"
	"testing"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/testutil/memstore"
	"github.com/saradorri/edrewards/internal/usecase/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWithdrawals(t *testing.T) (*WithdrawalUseCase, *memstore.Store) {
	t.Helper()
	log := logger.NewLogger("test", "debug")
	store := memstore.New()
	store.PutUser(&domain.User{
		ID: "u1", Username: "u1", Role: domain.RoleUser, ReferralCode: "REFU1",
		WalletBalance: 5000, EDBalance: decimal.Zero, TotalEarned: decimal.Zero,
	})
	store.PutUser(&domain.User{
		ID: "admin", Username: "admin", Role: domain.RoleAdmin, ReferralCode: "ADMIN",
		EDBalance: decimal.Zero, TotalEarned: decimal.Zero,
	})
	return NewWithdrawalUseCase(store, ledger.NewLedgerUseCase(store, log), "CM", log), store
}

func TestRequestWithdrawal(t *testing.T) {
	ctx := context.Background()

	t.Run("Debits_Wallet_Up_Front", func(t *testing.T) {
		uc, store := newTestWithdrawals(t)

		withdrawal, err := uc.RequestWithdrawal(ctx, "u1", 2000, "+237 677 12 34 56")
		require.NoError(t, err)
		assert.Equal(t, domain.WithdrawalStatusPending, withdrawal.Status)
		assert.Equal(t, "677123456", withdrawal.Phone)
		assert.Equal(t, int64(3000), store.User("u1").WalletBalance)

		debits := store.Transactions("u1", domain.TransactionTypeWithdrawal)
		require.Len(t, debits, 1)
		assert.True(t, decimal.NewFromInt(-2000).Equal(debits[0].Amount))
		assert.Equal(t, withdrawal.ExternalID, debits[0].ExternalID)
		assert.Len(t, store.Notifications("u1"), 1)
	})

	t.Run("Notification_Failure_Keeps_Request", func(t *testing.T) {
		uc, store := newTestWithdrawals(t)
		store.FailNotifications(errors.New("notifications table unavailable"))

		withdrawal, err := uc.RequestWithdrawal(ctx, "u1", 2000, "677123456")
		require.NoError(t, err)
		assert.Equal(t, domain.WithdrawalStatusPending, withdrawal.Status)
		assert.Equal(t, int64(3000), store.User("u1").WalletBalance)
		assert.Len(t, store.Transactions("u1", domain.TransactionTypeWithdrawal), 1)
		assert.Empty(t, store.Notifications("u1"))

		rejected, err := uc.Reject(ctx, "admin", withdrawal.ID, "wrong number")
		require.NoError(t, err)
		assert.Equal(t, domain.WithdrawalStatusRejected, rejected.Status)
		assert.Equal(t, int64(5000), store.User("u1").WalletBalance)
		assert.Len(t, store.AuditLog(), 1)
	})

	t.Run("Insufficient_Balance", func(t *testing.T) {
		uc, store := newTestWithdrawals(t)

		_, err := uc.RequestWithdrawal(ctx, "u1", 6000, "677123456")
		assert.True(t, domain.HasCode(err, domain.ErrCodeInsufficientBalance), "got %v", err)
		assert.Equal(t, int64(5000), store.User("u1").WalletBalance)

		listed, err := uc.ListUserWithdrawals(ctx, "u1", 0, 0)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})

	t.Run("Invalid_Input", func(t *testing.T) {
		uc, _ := newTestWithdrawals(t)

		_, err := uc.RequestWithdrawal(ctx, "u1", 0, "677123456")
		assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidAmount), "got %v", err)

		_, err = uc.RequestWithdrawal(ctx, "u1", 100, "123")
		assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidPhone), "got %v", err)
	})
}

func TestReviewWithdrawal(t *testing.T) {
	ctx := context.Background()

	t.Run("Approve", func(t *testing.T) {
		uc, store := newTestWithdrawals(t)
		requested, err := uc.RequestWithdrawal(ctx, "u1", 2000, "677123456")
		require.NoError(t, err)

		pending, err := uc.ListPending(ctx, "admin", 10, 0)
		require.NoError(t, err)
		require.Len(t, pending, 1)

		approved, err := uc.Approve(ctx, "admin", requested.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.WithdrawalStatusApproved, approved.Status)
		require.NotNil(t, approved.ReviewedBy)
		assert.Equal(t, "admin", *approved.ReviewedBy)
		assert.Equal(t, int64(3000), store.User("u1").WalletBalance)

		audit := store.AuditLog()
		require.Len(t, audit, 1)
		assert.Equal(t, domain.AuditActionApproveWithdrawal, audit[0].Action)

		_, err = uc.Reject(ctx, "admin", requested.ID, "too late")
		assert.True(t, domain.HasCode(err, domain.ErrCodeWithdrawalInvalidStatus), "got %v", err)
	})

	t.Run("Reject_Refunds_Wallet", func(t *testing.T) {
		uc, store := newTestWithdrawals(t)
		requested, err := uc.RequestWithdrawal(ctx, "u1", 2000, "677123456")
		require.NoError(t, err)

		rejected, err := uc.Reject(ctx, "admin", requested.ID, "phone does not match account")
		require.NoError(t, err)
		assert.Equal(t, domain.WithdrawalStatusRejected, rejected.Status)
		assert.Equal(t, "phone does not match account", rejected.Reason)
		assert.Equal(t, int64(5000), store.User("u1").WalletBalance)
		assert.Len(t, store.Transactions("u1", domain.TransactionTypeWithdrawalRefund), 1)
		assert.Len(t, store.Notifications("u1"), 2)

		_, err = uc.Reject(ctx, "admin", requested.ID, "again")
		assert.True(t, domain.HasCode(err, domain.ErrCodeWithdrawalInvalidStatus), "got %v", err)
		assert.Equal(t, int64(5000), store.User("u1").WalletBalance)
	})

	t.Run("Requires_Admin", func(t *testing.T) {
		uc, store := newTestWithdrawals(t)
		requested, err := uc.RequestWithdrawal(ctx, "u1", 2000, "677123456")
		require.NoError(t, err)

		_, err = uc.Reject(ctx, "u1", requested.ID, "self refund")
		assert.True(t, domain.HasCode(err, domain.ErrCodeForbidden), "got %v", err)
		_, err = uc.ListPending(ctx, "u1", 10, 0)
		assert.True(t, domain.HasCode(err, domain.ErrCodeForbidden), "got %v", err)
		assert.Equal(t, int64(3000), store.User("u1").WalletBalance)
	})

	t.Run("Unknown_Withdrawal", func(t *testing.T) {
		uc, _ := newTestWithdrawals(t)

		_, err := uc.Approve(ctx, "admin", "nope")
		assert.True(t, domain.HasCode(err, domain.ErrCodeWithdrawalNotFound), "got %v", err)
	})
}
