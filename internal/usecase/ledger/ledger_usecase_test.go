package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/testutil/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUser(id string, wallet int64, ed string) *domain.User {
	now := time.Now()
	return &domain.User{
		ID:            id,
		Username:      id,
		Role:          domain.RoleUser,
		WalletBalance: wallet,
		EDBalance:     decimal.RequireFromString(ed),
		TotalEarned:   decimal.Zero,
		ReferralCode:  "REF" + id,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func newTestLedger(t *testing.T) (*LedgerUseCase, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return NewLedgerUseCase(store, logger.NewLogger("test", "debug")), store
}

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		req        domain.ApplyRequest
		wantCode   string
		wantWallet int64
		wantED     string
		wantEarned string
	}{
		{
			name: "ED_Earning_Credits_Balance_And_TotalEarned",
			req: domain.ApplyRequest{
				UserID: "u1", Type: domain.TransactionTypeEarningClaim,
				Amount: decimal.RequireFromString("12.5"), Currency: domain.CurrencyED, ExternalID: "claim:1",
			},
			wantWallet: 1000, wantED: "22.5", wantEarned: "12.5",
		},
		{
			name: "Referral_Bonus_Credits_Wallet",
			req: domain.ApplyRequest{
				UserID: "u1", Type: domain.TransactionTypeReferralBonus,
				Amount: decimal.NewFromInt(1000), Currency: domain.CurrencyXAF, ExternalID: "referral:1",
			},
			wantWallet: 2000, wantED: "10", wantEarned: "0",
		},
		{
			name: "Withdrawal_Beyond_Wallet_Is_Rejected",
			req: domain.ApplyRequest{
				UserID: "u1", Type: domain.TransactionTypeWithdrawal,
				Amount: decimal.NewFromInt(-1500), Currency: domain.CurrencyXAF, ExternalID: "withdrawal:1",
			},
			wantCode: domain.ErrCodeInsufficientBalance, wantWallet: 1000, wantED: "10", wantEarned: "0",
		},
		{
			name: "Fractional_XAF_Is_Invalid",
			req: domain.ApplyRequest{
				UserID: "u1", Type: domain.TransactionTypeAdminAdjustment,
				Amount: decimal.RequireFromString("1.5"), Currency: domain.CurrencyXAF, ExternalID: "adj:1",
			},
			wantCode: domain.ErrCodeInvalidAmount, wantWallet: 1000, wantED: "10", wantEarned: "0",
		},
		{
			name: "Zero_Amount_Is_Invalid",
			req: domain.ApplyRequest{
				UserID: "u1", Type: domain.TransactionTypeAdReward,
				Amount: decimal.Zero, Currency: domain.CurrencyED, ExternalID: "ad:1",
			},
			wantCode: domain.ErrCodeInvalidAmount, wantWallet: 1000, wantED: "10", wantEarned: "0",
		},
		{
			name: "Unknown_Currency_Is_Invalid",
			req: domain.ApplyRequest{
				UserID: "u1", Type: domain.TransactionTypeAdReward,
				Amount: decimal.NewFromInt(1), Currency: "USD", ExternalID: "ad:2",
			},
			wantCode: domain.ErrCodeInvalidCurrency, wantWallet: 1000, wantED: "10", wantEarned: "0",
		},
		{
			name: "Unknown_User",
			req: domain.ApplyRequest{
				UserID: "ghost", Type: domain.TransactionTypeAdReward,
				Amount: decimal.NewFromInt(1), Currency: domain.CurrencyED, ExternalID: "ad:3",
			},
			wantCode: domain.ErrCodeUserNotFound, wantWallet: 1000, wantED: "10", wantEarned: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store := newTestLedger(t)
			store.PutUser(createTestUser("u1", 1000, "10"))

			result, err := uc.Apply(context.Background(), tt.req)

			if tt.wantCode != "" {
				assert.Error(t, err)
				assert.True(t, domain.HasCode(err, tt.wantCode), "got %v", err)
				assert.Nil(t, result)
				assert.Empty(t, store.Transactions("u1", ""), "rejected requests leave no ledger row")
			} else {
				require.NoError(t, err)
				assert.False(t, result.Duplicate)
				assert.Equal(t, domain.TransactionStatusCompleted, result.Transaction.Status)
				assert.Equal(t, tt.wantWallet, result.Balance.WalletBalance)
			}

			user := store.User("u1")
			assert.Equal(t, tt.wantWallet, user.WalletBalance)
			assert.True(t, decimal.RequireFromString(tt.wantED).Equal(user.EDBalance), "ed balance %s", user.EDBalance)
			assert.True(t, decimal.RequireFromString(tt.wantEarned).Equal(user.TotalEarned), "total earned %s", user.TotalEarned)
		})
	}
}

func TestApplyIdempotency(t *testing.T) {
	uc, store := newTestLedger(t)
	store.PutUser(createTestUser("u1", 0, "0"))
	store.PutUser(createTestUser("u2", 0, "0"))

	req := domain.ApplyRequest{
		UserID: "u1", Type: domain.TransactionTypeReferralBonus,
		Amount: decimal.NewFromInt(1000), Currency: domain.CurrencyXAF, ExternalID: "referral:u1:u2",
	}

	t.Run("Replay_Returns_Stored_Row", func(t *testing.T) {
		first, err := uc.Apply(context.Background(), req)
		require.NoError(t, err)
		second, err := uc.Apply(context.Background(), req)
		require.NoError(t, err)

		assert.False(t, first.Duplicate)
		assert.True(t, second.Duplicate)
		assert.Equal(t, first.Transaction.ID, second.Transaction.ID)
		assert.Equal(t, int64(1000), store.User("u1").WalletBalance)
		assert.Len(t, store.Transactions("u1", domain.TransactionTypeReferralBonus), 1)
	})

	t.Run("Reused_ExternalID_For_Other_User_Conflicts", func(t *testing.T) {
		other := req
		other.UserID = "u2"
		_, err := uc.Apply(context.Background(), other)
		assert.True(t, domain.HasCode(err, "CONFLICT"), "got %v", err)
		assert.Equal(t, int64(0), store.User("u2").WalletBalance)
	})

	t.Run("Reused_ExternalID_For_Other_Type_Conflicts", func(t *testing.T) {
		other := req
		other.Type = domain.TransactionTypeAdminAdjustment
		_, err := uc.Apply(context.Background(), other)
		assert.True(t, domain.HasCode(err, "CONFLICT"), "got %v", err)
	})
}

func TestApplyConcurrentDebitsNeverOverdraw(t *testing.T) {
	uc, store := newTestLedger(t)
	store.PutUser(createTestUser("u1", 1000, "0"))

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.Apply(context.Background(), domain.ApplyRequest{
				UserID: "u1", Type: domain.TransactionTypeWithdrawal,
				Amount: decimal.NewFromInt(-100), Currency: domain.CurrencyXAF,
				ExternalID: "withdrawal:" + string(rune('a'+i)),
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, domain.HasCode(err, domain.ErrCodeInsufficientBalance), "got %v", err)
	}
	assert.Equal(t, 10, succeeded)
	assert.Equal(t, int64(0), store.User("u1").WalletBalance)
}

func TestApplyPersistenceFailureRollsBack(t *testing.T) {
	uc, store := newTestLedger(t)
	store.PutUser(createTestUser("u1", 500, "0"))

	var failed bool
	err := store.WithinTransaction(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		_, err := uc.ApplyInTx(ctx, repos, domain.ApplyRequest{
			UserID: "u1", Type: domain.TransactionTypeAdminAdjustment,
			Amount: decimal.NewFromInt(100), Currency: domain.CurrencyXAF, ExternalID: "adj:rollback",
		})
		if err != nil {
			return err
		}
		failed = true
		return assert.AnError
	})

	assert.Error(t, err)
	assert.True(t, failed)
	assert.Equal(t, int64(500), store.User("u1").WalletBalance)
	assert.Empty(t, store.Transactions("u1", ""))

	store.FailNext(1)
	_, err = uc.Apply(context.Background(), domain.ApplyRequest{
		UserID: "u1", Type: domain.TransactionTypeAdminAdjustment,
		Amount: decimal.NewFromInt(100), Currency: domain.CurrencyXAF, ExternalID: "adj:fail",
	})
	assert.True(t, domain.HasCode(err, domain.ErrCodePersistence), "got %v", err)
	assert.Equal(t, int64(500), store.User("u1").WalletBalance)
}

func TestMachinePurchaseDoesNotMoveBalance(t *testing.T) {
	uc, store := newTestLedger(t)
	store.PutUser(createTestUser("u1", 300, "0"))

	result, err := uc.Apply(context.Background(), domain.ApplyRequest{
		UserID: "u1", Type: domain.TransactionTypeMachinePurchase,
		Amount: decimal.NewFromInt(95000), Currency: domain.CurrencyXAF, ExternalID: "purchase:1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(300), result.Balance.WalletBalance)
	assert.Equal(t, int64(300), store.User("u1").WalletBalance)
}

func TestGetTransactions(t *testing.T) {
	uc, store := newTestLedger(t)
	store.PutUser(createTestUser("u1", 0, "0"))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		store.PutTransaction(&domain.Transaction{
			ID: string(rune('a' + i)), UserID: "u1", Type: domain.TransactionTypeAdReward,
			Amount: decimal.NewFromInt(1), Currency: domain.CurrencyED, Status: domain.TransactionStatusCompleted,
			ExternalID: "ad:" + string(rune('a'+i)), CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	all, err := uc.GetTransactions(context.Background(), "u1", 0, -5)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID, "newest first")

	paged, err := uc.GetTransactions(context.Background(), "u1", 1, 1)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "b", paged[0].ID)
}

func TestGetBalance(t *testing.T) {
	uc, store := newTestLedger(t)
	store.PutUser(createTestUser("u1", 250, "3.25"))

	balance, err := uc.GetBalance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance.WalletBalance)
	assert.True(t, decimal.RequireFromString("3.25").Equal(balance.EDBalance))

	_, err = uc.GetBalance(context.Background(), "ghost")
	assert.True(t, domain.HasCode(err, domain.ErrCodeUserNotFound))
}
