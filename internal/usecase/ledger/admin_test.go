package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/testutil/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestAdmin() *domain.User {
	admin := createTestUser("admin", 0, "0")
	admin.Role = domain.RoleAdmin
	return admin
}

func completedTransaction(id, userID string, txType domain.TransactionType, amount string, currency domain.Currency, at time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:          id,
		UserID:      userID,
		Type:        txType,
		Amount:      decimal.RequireFromString(amount),
		Currency:    currency,
		Status:      domain.TransactionStatusCompleted,
		ExternalID:  "ext:" + id,
		CreatedAt:   at,
		UpdatedAt:   at,
		CompletedAt: &at,
	}
}

func TestAdminOperationsRequireAdminRole(t *testing.T) {
	uc, store := newTestLedger(t)
	store.PutUser(createTestUser("u1", 100, "0"))
	store.PutUser(createTestUser("u2", 100, "0"))
	ctx := context.Background()
	amount := decimal.NewFromInt(10)

	_, err := uc.RestoreBalance(ctx, "u2", domain.RestoreRequest{UserID: "u1", Amount: &amount, Currency: domain.CurrencyED})
	assert.True(t, domain.HasCode(err, domain.ErrCodeForbidden), "got %v", err)

	_, err = uc.AdjustBalance(ctx, "u2", domain.AdjustRequest{
		UserID: "u1", Operation: domain.AdjustOperationAdd, Amount: amount, Currency: domain.CurrencyXAF,
	})
	assert.True(t, domain.HasCode(err, domain.ErrCodeForbidden), "got %v", err)

	_, err = uc.ReconcileUser(ctx, "ghost", "u1")
	assert.True(t, domain.HasCode(err, domain.ErrCodeForbidden), "got %v", err)

	assert.Equal(t, int64(100), store.User("u1").WalletBalance)
	assert.Empty(t, store.AuditLog())
}

func TestRestoreBalance(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Replays_Last_Earning", func(t *testing.T) {
		uc, store := newTestLedger(t)
		store.PutUser(createTestAdmin())
		store.PutUser(createTestUser("u1", 0, "0"))
		store.PutTransaction(completedTransaction("t1", "u1", domain.TransactionTypeEarningClaim, "4", domain.CurrencyED, now.Add(-2*time.Hour)))
		store.PutTransaction(completedTransaction("t2", "u1", domain.TransactionTypeAdReward, "0.75", domain.CurrencyED, now.Add(-time.Hour)))
		store.PutTransaction(completedTransaction("t3", "u1", domain.TransactionTypeWithdrawal, "-10", domain.CurrencyXAF, now))

		result, err := uc.RestoreBalance(ctx, "admin", domain.RestoreRequest{UserID: "u1", Reason: "lost reward"})
		require.NoError(t, err)

		assert.Equal(t, domain.TransactionTypeBalanceRestoration, result.Transaction.Type)
		assert.True(t, decimal.RequireFromString("0.75").Equal(result.Transaction.Amount))
		assert.Equal(t, "restore:u1:t2", result.Transaction.ExternalID)
		assert.Equal(t, "t2", result.Transaction.Metadata["source_transaction_id"])
		assert.True(t, decimal.RequireFromString("0.75").Equal(store.User("u1").EDBalance))

		again, err := uc.RestoreBalance(ctx, "admin", domain.RestoreRequest{UserID: "u1"})
		require.NoError(t, err)
		assert.True(t, again.Duplicate)
		assert.True(t, decimal.RequireFromString("0.75").Equal(store.User("u1").EDBalance))

		audit := store.AuditLog()
		require.Len(t, audit, 2)
		assert.Equal(t, domain.AuditActionRestoreBalance, audit[0].Action)
		assert.Equal(t, "admin", audit[0].AdminID)
		assert.Equal(t, "u1", audit[0].TargetUserID)
	})

	t.Run("Explicit_Amount", func(t *testing.T) {
		uc, store := newTestLedger(t)
		store.PutUser(createTestAdmin())
		store.PutUser(createTestUser("u1", 0, "0"))
		amount := decimal.NewFromInt(500)

		result, err := uc.RestoreBalance(ctx, "admin", domain.RestoreRequest{
			UserID: "u1", Amount: &amount, Currency: domain.CurrencyXAF, IdempotencyKey: "ticket-1",
		})
		require.NoError(t, err)
		assert.Equal(t, "restore:u1:ticket-1", result.Transaction.ExternalID)
		assert.Equal(t, int64(500), store.User("u1").WalletBalance)
	})

	t.Run("Nothing_To_Restore", func(t *testing.T) {
		uc, store := newTestLedger(t)
		store.PutUser(createTestAdmin())
		store.PutUser(createTestUser("u1", 0, "0"))

		_, err := uc.RestoreBalance(ctx, "admin", domain.RestoreRequest{UserID: "u1"})
		assert.True(t, domain.HasCode(err, domain.ErrCodeTransactionNotFound), "got %v", err)
		assert.Empty(t, store.AuditLog())
	})

	t.Run("Non_Positive_Amount", func(t *testing.T) {
		uc, store := newTestLedger(t)
		store.PutUser(createTestAdmin())
		store.PutUser(createTestUser("u1", 0, "0"))
		amount := decimal.NewFromInt(-5)

		_, err := uc.RestoreBalance(ctx, "admin", domain.RestoreRequest{UserID: "u1", Amount: &amount, Currency: domain.CurrencyED})
		assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidAmount), "got %v", err)
	})

	t.Run("Unknown_User", func(t *testing.T) {
		uc, store := newTestLedger(t)
		store.PutUser(createTestAdmin())

		_, err := uc.RestoreBalance(ctx, "admin", domain.RestoreRequest{UserID: "ghost"})
		assert.True(t, domain.HasCode(err, domain.ErrCodeUserNotFound), "got %v", err)
	})
}

func TestAdjustBalance(t *testing.T) {
	tests := []struct {
		name       string
		req        domain.AdjustRequest
		wantCode   string
		wantWallet int64
		wantED     string
	}{
		{
			name:       "Add_XAF",
			req:        domain.AdjustRequest{Operation: domain.AdjustOperationAdd, Amount: decimal.NewFromInt(250), Currency: domain.CurrencyXAF},
			wantWallet: 1250, wantED: "10",
		},
		{
			name:       "Subtract_ED",
			req:        domain.AdjustRequest{Operation: domain.AdjustOperationSubtract, Amount: decimal.RequireFromString("2.5"), Currency: domain.CurrencyED},
			wantWallet: 1000, wantED: "7.5",
		},
		{
			name:       "Set_ED",
			req:        domain.AdjustRequest{Operation: domain.AdjustOperationSet, Amount: decimal.NewFromInt(3), Currency: domain.CurrencyED},
			wantWallet: 1000, wantED: "3",
		},
		{
			name:       "Set_XAF_To_Current_Is_NoOp",
			req:        domain.AdjustRequest{Operation: domain.AdjustOperationSet, Amount: decimal.NewFromInt(1000), Currency: domain.CurrencyXAF},
			wantWallet: 1000, wantED: "10",
		},
		{
			name:       "Subtract_ED_Below_Zero",
			req:        domain.AdjustRequest{Operation: domain.AdjustOperationSubtract, Amount: decimal.NewFromInt(11), Currency: domain.CurrencyED},
			wantCode:   domain.ErrCodeInsufficientBalance,
			wantWallet: 1000, wantED: "10",
		},
		{
			name:       "Subtract_XAF_Below_Zero",
			req:        domain.AdjustRequest{Operation: domain.AdjustOperationSubtract, Amount: decimal.NewFromInt(1001), Currency: domain.CurrencyXAF},
			wantCode:   domain.ErrCodeInsufficientBalance,
			wantWallet: 1000, wantED: "10",
		},
		{
			name:       "Set_Negative",
			req:        domain.AdjustRequest{Operation: domain.AdjustOperationSet, Amount: decimal.NewFromInt(-1), Currency: domain.CurrencyED},
			wantCode:   domain.ErrCodeInvalidAmount,
			wantWallet: 1000, wantED: "10",
		},
		{
			name:       "Unknown_Operation",
			req:        domain.AdjustRequest{Operation: "multiply", Amount: decimal.NewFromInt(2), Currency: domain.CurrencyED},
			wantCode:   domain.ErrCodeInvalidOperation,
			wantWallet: 1000, wantED: "10",
		},
		{
			name:       "Fractional_XAF",
			req:        domain.AdjustRequest{Operation: domain.AdjustOperationAdd, Amount: decimal.RequireFromString("0.5"), Currency: domain.CurrencyXAF},
			wantCode:   domain.ErrCodeInvalidAmount,
			wantWallet: 1000, wantED: "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store := newTestLedger(t)
			store.PutUser(createTestAdmin())
			store.PutUser(createTestUser("u1", 1000, "10"))

			req := tt.req
			req.UserID = "u1"
			req.IdempotencyKey = "key-1"
			_, err := uc.AdjustBalance(context.Background(), "admin", req)

			if tt.wantCode != "" {
				assert.True(t, domain.HasCode(err, tt.wantCode), "got %v", err)
				assert.Empty(t, store.AuditLog())
			} else {
				require.NoError(t, err)
				audit := store.AuditLog()
				require.Len(t, audit, 1)
				assert.Equal(t, domain.AuditActionAdjustBalance, audit[0].Action)
			}

			user := store.User("u1")
			assert.Equal(t, tt.wantWallet, user.WalletBalance)
			assert.True(t, decimal.RequireFromString(tt.wantED).Equal(user.EDBalance), "ed balance %s", user.EDBalance)
		})
	}
}

func TestAdjustBalanceIdempotencyKey(t *testing.T) {
	uc, store := newTestLedger(t)
	store.PutUser(createTestAdmin())
	store.PutUser(createTestUser("u1", 0, "0"))

	req := domain.AdjustRequest{
		UserID: "u1", Operation: domain.AdjustOperationAdd, Amount: decimal.NewFromInt(300),
		Currency: domain.CurrencyXAF, IdempotencyKey: "ticket-9",
	}
	first, err := uc.AdjustBalance(context.Background(), "admin", req)
	require.NoError(t, err)
	second, err := uc.AdjustBalance(context.Background(), "admin", req)
	require.NoError(t, err)

	assert.False(t, first.Duplicate)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Transaction.ID, second.Transaction.ID)
	assert.Equal(t, int64(300), store.User("u1").WalletBalance)
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	seed := func(t *testing.T) (*LedgerUseCase, *memstore.Store) {
		uc, s := newTestLedger(t)
		s.PutUser(createTestAdmin())
		drifted := createTestUser("u1", 1000, "7")
		drifted.TotalEarned = decimal.NewFromInt(5)
		s.PutUser(drifted)
		s.PutTransaction(completedTransaction("t1", "u1", domain.TransactionTypeReferralBonus, "1000", domain.CurrencyXAF, now.Add(-3*time.Hour)))
		s.PutTransaction(completedTransaction("t2", "u1", domain.TransactionTypeWithdrawal, "-200", domain.CurrencyXAF, now.Add(-2*time.Hour)))
		s.PutTransaction(completedTransaction("t3", "u1", domain.TransactionTypeAdReward, "5", domain.CurrencyED, now.Add(-time.Hour)))
		s.PutTransaction(completedTransaction("t4", "u1", domain.TransactionTypeMachinePurchase, "95000", domain.CurrencyXAF, now))
		return uc, s
	}

	t.Run("Corrects_Drift", func(t *testing.T) {
		uc, s := seed(t)

		result, err := uc.Reconcile(ctx, "u1")
		require.NoError(t, err)

		assert.True(t, result.Corrected)
		assert.Equal(t, int64(-200), result.WalletDrift)
		assert.True(t, decimal.NewFromInt(-2).Equal(result.EDDrift))
		assert.True(t, result.TotalEarnedDrift.IsZero())

		user := s.User("u1")
		assert.Equal(t, int64(800), user.WalletBalance)
		assert.True(t, decimal.NewFromInt(5).Equal(user.EDBalance))
		assert.Len(t, s.Transactions("u1", domain.TransactionTypeReconciliation), 2)

		again, err := uc.Reconcile(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, again.Corrected)
		assert.Len(t, s.Transactions("u1", domain.TransactionTypeReconciliation), 2)
	})

	t.Run("Admin_Entry_Point_Audits", func(t *testing.T) {
		uc, s := seed(t)

		result, err := uc.ReconcileUser(ctx, "admin", "u1")
		require.NoError(t, err)
		assert.True(t, result.Corrected)

		audit := s.AuditLog()
		require.Len(t, audit, 1)
		assert.Equal(t, domain.AuditActionReconcile, audit[0].Action)
		assert.Equal(t, true, audit[0].Details["corrected"])
	})

	t.Run("Unknown_User", func(t *testing.T) {
		uc, _ := seed(t)
		_, err := uc.Reconcile(ctx, "ghost")
		assert.True(t, domain.HasCode(err, domain.ErrCodeUserNotFound))
	})
}
