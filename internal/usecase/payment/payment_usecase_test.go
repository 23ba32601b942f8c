package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/domain/mocks"
	"github.com/saradorri/edrewards/internal/infrastructure/lock"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/testutil/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	uc       *PaymentUseCase
	store    *memstore.Store
	provider *mocks.MockPaymentProvider
	outbox   *mocks.MockOutboxProcessor
}

func newTestEnv(t *testing.T, ctrl *gomock.Controller) *testEnv {
	t.Helper()
	log := logger.NewLogger("test", "debug")
	store := memstore.New()
	provider := mocks.NewMockPaymentProvider(ctrl)
	outbox := mocks.NewMockOutboxProcessor(ctrl)

	now := time.Now()
	store.PutUser(&domain.User{
		ID: "u1", Username: "u1", Role: domain.RoleUser, ReferralCode: "REFU1",
		EDBalance: decimal.Zero, TotalEarned: decimal.Zero, CreatedAt: now, UpdatedAt: now,
	})
	store.PutMachineType(&domain.MachineType{
		ID: "pro", Name: "Pro Miner", Price: 100000, DailyEarnings: decimal.NewFromInt(130), CreatedAt: now, UpdatedAt: now,
	})

	uc := NewPaymentUseCase(store, provider, outbox, lock.NewKeyLockManager(log), Config{
		Region:          "CM",
		PriceTolerance:  0,
		DedupWindow:     10 * time.Minute,
		IntentExpiry:    time.Hour,
		ProviderTimeout: time.Second,
		DefaultMedium:   "mobile money",
		PaymentMessage:  "Machine purchase",
		Discounts:       []DiscountTier{{MinPrice: 50000, Percent: 5}, {MinPrice: 200000, Percent: 10}},
	}, log)

	return &testEnv{uc: uc, store: store, provider: provider, outbox: outbox}
}

func validIntent() domain.IntentRequest {
	return domain.IntentRequest{
		UserID:        "u1",
		MachineTypeID: "pro",
		Phone:         "677123456",
		ClientAmount:  95000,
	}
}

func pendingPurchase(id, userID string, createdAt time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:         id,
		UserID:     userID,
		Type:       domain.TransactionTypeMachinePurchase,
		Amount:     decimal.NewFromInt(-95000),
		Currency:   domain.CurrencyXAF,
		Status:     domain.TransactionStatusPending,
		ExternalID: "purchase:pro:" + userID + ":" + id,
		Metadata:   domain.JSONB{"machine_type_id": "pro"},
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func purchaseRows(env *testEnv) []domain.Transaction {
	return env.store.Transactions("u1", domain.TransactionTypeMachinePurchase)
}

func TestCreateIntent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)

		env.provider.EXPECT().
			InitiatePayment(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req domain.PaymentRequest) (*domain.PaymentInitiation, error) {
				assert.Equal(t, int64(95000), req.Amount)
				assert.Equal(t, "677123456", req.Phone)
				assert.Equal(t, "mobile money", req.Medium)
				assert.Equal(t, "u1", req.UserID)
				assert.Contains(t, req.ExternalID, "purchase:pro:u1:")
				return &domain.PaymentInitiation{TransID: "tx-1"}, nil
			})

		result, err := env.uc.CreateIntent(context.Background(), validIntent())
		require.NoError(t, err)

		assert.Equal(t, int64(95000), result.Amount)
		assert.Equal(t, "tx-1", result.ProviderSessionID)
		assert.Equal(t, domain.TransactionStatusPending, result.Status)

		rows := purchaseRows(env)
		require.Len(t, rows, 1)
		assert.Equal(t, result.ExternalID, rows[0].ExternalID)
		assert.Equal(t, domain.TransactionStatusPending, rows[0].Status)
		require.NotNil(t, rows[0].ProviderReference)
		assert.Equal(t, "tx-1", *rows[0].ProviderReference)
		assert.True(t, decimal.NewFromInt(-95000).Equal(rows[0].Amount))
	})

	t.Run("List_Price_Is_A_Price_Mismatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)

		req := validIntent()
		req.ClientAmount = 100000
		_, err := env.uc.CreateIntent(context.Background(), req)

		assert.True(t, domain.HasCode(err, domain.ErrCodePriceMismatch), "got %v", err)
		assert.Empty(t, purchaseRows(env))
	})

	t.Run("Invalid_Phone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)

		req := validIntent()
		req.Phone = "12345"
		_, err := env.uc.CreateIntent(context.Background(), req)

		assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidPhone), "got %v", err)
		assert.Empty(t, purchaseRows(env))
	})

	t.Run("Unknown_Machine_Type", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)

		req := validIntent()
		req.MachineTypeID = "ghost"
		_, err := env.uc.CreateIntent(context.Background(), req)

		assert.True(t, domain.HasCode(err, domain.ErrCodeMachineTypeNotFound), "got %v", err)
	})

	t.Run("Already_Owned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		env.store.PutMachine(&domain.UserMachine{ID: "m1", UserID: "u1", MachineTypeID: "pro", TotalEarned: decimal.Zero})

		_, err := env.uc.CreateIntent(context.Background(), validIntent())

		assert.True(t, domain.HasCode(err, domain.ErrCodeAlreadyOwned), "got %v", err)
		assert.Empty(t, purchaseRows(env))
	})

	t.Run("Duplicate_Pending_Within_Window", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)

		env.provider.EXPECT().
			InitiatePayment(gomock.Any(), gomock.Any()).
			Return(&domain.PaymentInitiation{TransID: "tx-1"}, nil).
			Times(1)

		_, err := env.uc.CreateIntent(context.Background(), validIntent())
		require.NoError(t, err)
		_, err = env.uc.CreateIntent(context.Background(), validIntent())

		assert.True(t, domain.HasCode(err, domain.ErrCodeDuplicatePendingPayment), "got %v", err)
		assert.Len(t, purchaseRows(env), 1)
	})

	t.Run("Pending_Outside_Window_Allows_New_Intent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		env.store.PutTransaction(pendingPurchase("old", "u1", time.Now().Add(-30*time.Minute)))

		env.provider.EXPECT().
			InitiatePayment(gomock.Any(), gomock.Any()).
			Return(&domain.PaymentInitiation{TransID: "tx-2"}, nil)

		_, err := env.uc.CreateIntent(context.Background(), validIntent())
		require.NoError(t, err)
		assert.Len(t, purchaseRows(env), 2)
	})

	t.Run("Provider_Timeout_Leaves_Intent_Pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)

		env.provider.EXPECT().
			InitiatePayment(gomock.Any(), gomock.Any()).
			Return(nil, domain.ErrProviderTimeout)

		result, err := env.uc.CreateIntent(context.Background(), validIntent())
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionStatusPending, result.Status)
		assert.Empty(t, result.ProviderSessionID)

		rows := purchaseRows(env)
		require.Len(t, rows, 1)
		assert.Equal(t, domain.TransactionStatusPending, rows[0].Status)
	})

	t.Run("Insufficient_Funds", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)

		env.provider.EXPECT().
			InitiatePayment(gomock.Any(), gomock.Any()).
			Return(nil, &domain.ProviderError{StatusCode: 400, Message: "Insufficient balance on account"})

		_, err := env.uc.CreateIntent(context.Background(), validIntent())
		assert.True(t, domain.HasCode(err, domain.ErrCodeInsufficientFunds), "got %v", err)

		rows := purchaseRows(env)
		require.Len(t, rows, 1)
		assert.Equal(t, domain.TransactionStatusFailed, rows[0].Status)
	})

	t.Run("Definite_Refusal_Fails_Intent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)

		env.provider.EXPECT().
			InitiatePayment(gomock.Any(), gomock.Any()).
			Return(nil, &domain.ProviderError{StatusCode: 400, Code: "INVALID_PAYER", Message: "payer account is blocked"})

		_, err := env.uc.CreateIntent(context.Background(), validIntent())
		assert.True(t, domain.HasCode(err, domain.ErrCodePaymentRefused), "got %v", err)

		rows := purchaseRows(env)
		require.Len(t, rows, 1)
		assert.Equal(t, domain.TransactionStatusFailed, rows[0].Status)
	})

	ambiguous := []struct {
		name string
		err  error
	}{
		{name: "Server_Error", err: &domain.ProviderError{StatusCode: 502, Message: "upstream exploded"}},
		{name: "Empty_Transaction_ID", err: &domain.ProviderError{StatusCode: 502, Code: "EMPTY_TRANS_ID", Message: "provider returned no transaction id"}},
		{name: "Connection_Reset", err: errors.New("read tcp: connection reset by peer")},
		{name: "Client_Went_Away", err: context.Canceled},
	}
	for _, tt := range ambiguous {
		t.Run(tt.name+"_Leaves_Intent_Pending", func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			env := newTestEnv(t, ctrl)

			env.provider.EXPECT().
				InitiatePayment(gomock.Any(), gomock.Any()).
				Return(nil, tt.err)

			result, err := env.uc.CreateIntent(context.Background(), validIntent())
			require.NoError(t, err)
			assert.Equal(t, domain.TransactionStatusPending, result.Status)

			rows := purchaseRows(env)
			require.Len(t, rows, 1)
			assert.Equal(t, domain.TransactionStatusPending, rows[0].Status)
		})
	}

	t.Run("Success_After_Server_Error_Grants_Machine", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)

		env.provider.EXPECT().
			InitiatePayment(gomock.Any(), gomock.Any()).
			Return(nil, &domain.ProviderError{StatusCode: 502, Message: "bad gateway"})
		env.outbox.EXPECT().Dispatch(gomock.Any())

		intent, err := env.uc.CreateIntent(context.Background(), validIntent())
		require.NoError(t, err)

		result, err := env.uc.Confirm(context.Background(), intent.ExternalID, "tx-late", domain.PaymentOutcomeSuccess)
		require.NoError(t, err)
		assert.True(t, result.Granted)
		assert.Equal(t, domain.TransactionStatusCompleted, result.Status)

		count, err := env.store.Repos().Machines.CountUserMachines(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Grants_Machine_Once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		row := pendingPurchase("p1", "u1", time.Now())
		env.store.PutTransaction(row)

		env.outbox.EXPECT().
			Dispatch(gomock.Any()).
			Do(func(event *domain.OutboxEvent) {
				assert.Equal(t, domain.EventTypeReferralEvaluation, event.Type)
				assert.Equal(t, "u1", event.Data["user_id"])
			}).
			Times(1)

		first, err := env.uc.Confirm(ctx, row.ExternalID, "", domain.PaymentOutcomeSuccess)
		require.NoError(t, err)
		assert.True(t, first.Granted)
		assert.False(t, first.AlreadyProcessed)

		second, err := env.uc.Confirm(ctx, row.ExternalID, "", domain.PaymentOutcomeSuccess)
		require.NoError(t, err)
		assert.True(t, second.Granted)
		assert.True(t, second.AlreadyProcessed)

		machines, err := env.store.Repos().Machines.ListUserMachines(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, machines, 1)
		assert.Equal(t, "pro", machines[0].MachineTypeID)
		assert.False(t, machines[0].IsActive)
		assert.Equal(t, row.ExternalID, machines[0].PurchaseExternalID)

		assert.Len(t, env.store.Notifications("u1"), 1)
		assert.Len(t, env.store.OutboxEvents(), 1)
		assert.Equal(t, domain.TransactionStatusCompleted, purchaseRows(env)[0].Status)
		assert.Equal(t, int64(0), env.store.User("u1").WalletBalance)
	})

	t.Run("Concurrent_Confirmations_Grant_Once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		row := pendingPurchase("p1", "u1", time.Now())
		env.store.PutTransaction(row)

		env.outbox.EXPECT().Dispatch(gomock.Any()).Times(1)

		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := env.uc.Confirm(ctx, row.ExternalID, "", domain.PaymentOutcomeSuccess)
				if assert.NoError(t, err) && !result.AlreadyProcessed {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, fresh)
		count, err := env.store.Repos().Machines.CountUserMachines(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Late_Success_Settles_Failed_Intent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		row := pendingPurchase("p1", "u1", time.Now())
		env.store.PutTransaction(row)
		env.outbox.EXPECT().Dispatch(gomock.Any()).Times(1)

		failed, err := env.uc.Confirm(ctx, row.ExternalID, "", domain.PaymentOutcomeFailed)
		require.NoError(t, err)
		assert.False(t, failed.Granted)
		assert.Equal(t, domain.TransactionStatusFailed, failed.Status)

		again, err := env.uc.Confirm(ctx, row.ExternalID, "", domain.PaymentOutcomeFailed)
		require.NoError(t, err)
		assert.True(t, again.AlreadyProcessed)

		settled, err := env.uc.Confirm(ctx, row.ExternalID, "", domain.PaymentOutcomeSuccess)
		require.NoError(t, err)
		assert.True(t, settled.Granted)
		assert.False(t, settled.AlreadyProcessed)
		assert.Equal(t, domain.TransactionStatusCompleted, purchaseRows(env)[0].Status)

		count, err := env.store.Repos().Machines.CountUserMachines(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Notification_Failure_Does_Not_Block_Grant", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		row := pendingPurchase("p1", "u1", time.Now())
		env.store.PutTransaction(row)
		env.store.FailNotifications(errors.New("notifications table unavailable"))
		env.outbox.EXPECT().Dispatch(gomock.Any()).Times(1)

		result, err := env.uc.Confirm(ctx, row.ExternalID, "", domain.PaymentOutcomeSuccess)
		require.NoError(t, err)
		assert.True(t, result.Granted)
		assert.Equal(t, domain.TransactionStatusCompleted, purchaseRows(env)[0].Status)

		count, err := env.store.Repos().Machines.CountUserMachines(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.Len(t, env.store.OutboxEvents(), 1)
		assert.Empty(t, env.store.Notifications("u1"))
	})

	t.Run("Second_Payment_For_Owned_Type_Awaits_Refund", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		now := time.Now()
		env.uc.WithClock(func() time.Time { return now })

		env.provider.EXPECT().
			InitiatePayment(gomock.Any(), gomock.Any()).
			Return(&domain.PaymentInitiation{TransID: "tx-a"}, nil)
		first, err := env.uc.CreateIntent(ctx, validIntent())
		require.NoError(t, err)

		now = now.Add(11 * time.Minute)
		env.provider.EXPECT().
			InitiatePayment(gomock.Any(), gomock.Any()).
			Return(&domain.PaymentInitiation{TransID: "tx-b"}, nil)
		second, err := env.uc.CreateIntent(ctx, validIntent())
		require.NoError(t, err)

		env.outbox.EXPECT().Dispatch(gomock.Any()).Times(1)

		granted, err := env.uc.Confirm(ctx, first.ExternalID, "", domain.PaymentOutcomeSuccess)
		require.NoError(t, err)
		assert.True(t, granted.Granted)

		stranded, err := env.uc.Confirm(ctx, second.ExternalID, "", domain.PaymentOutcomeSuccess)
		require.NoError(t, err)
		assert.False(t, stranded.Granted)
		assert.False(t, stranded.AlreadyProcessed)
		assert.Equal(t, domain.TransactionStatusRefundPending, stranded.Status)

		replay, err := env.uc.Confirm(ctx, second.ExternalID, "", domain.PaymentOutcomeSuccess)
		require.NoError(t, err)
		assert.False(t, replay.Granted)
		assert.True(t, replay.AlreadyProcessed)

		count, err := env.store.Repos().Machines.CountUserMachines(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.Len(t, env.store.OutboxEvents(), 1)
		assert.Len(t, env.store.Notifications("u1"), 2)

		statuses := map[string]domain.TransactionStatus{}
		for _, row := range purchaseRows(env) {
			statuses[row.ExternalID] = row.Status
		}
		assert.Equal(t, domain.TransactionStatusCompleted, statuses[first.ExternalID])
		assert.Equal(t, domain.TransactionStatusRefundPending, statuses[second.ExternalID])
	})

	t.Run("Webhook_Reference_Is_Kept_For_Polling", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		row := pendingPurchase("p1", "u1", time.Now())
		env.store.PutTransaction(row)

		result, err := env.uc.Confirm(ctx, row.ExternalID, "tx-77", domain.PaymentOutcomePending)
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionStatusPending, result.Status)

		stored := purchaseRows(env)[0]
		require.NotNil(t, stored.ProviderReference)
		assert.Equal(t, "tx-77", *stored.ProviderReference)

		env.provider.EXPECT().
			PaymentStatus(gomock.Any(), "tx-77").
			Return(&domain.ProviderPayment{TransID: "tx-77", Status: domain.ProviderStatusPending}, nil)
		reconciled, err := env.uc.ReconcilePayment(ctx, "u1", row.ExternalID)
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionStatusPending, reconciled.Status)

		_, err = env.uc.Confirm(ctx, row.ExternalID, "tx-other", domain.PaymentOutcomePending)
		require.NoError(t, err)
		assert.Equal(t, "tx-77", *purchaseRows(env)[0].ProviderReference)
	})

	t.Run("Failure_After_Success_Is_Ignored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		row := pendingPurchase("p1", "u1", time.Now())
		env.store.PutTransaction(row)
		env.outbox.EXPECT().Dispatch(gomock.Any())

		_, err := env.uc.Confirm(ctx, row.ExternalID, "", domain.PaymentOutcomeSuccess)
		require.NoError(t, err)
		result, err := env.uc.Confirm(ctx, row.ExternalID, "", domain.PaymentOutcomeFailed)
		require.NoError(t, err)
		assert.True(t, result.AlreadyProcessed)
		assert.Equal(t, domain.TransactionStatusCompleted, result.Status)
	})

	t.Run("Pending_Outcome_Changes_Nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		row := pendingPurchase("p1", "u1", time.Now())
		env.store.PutTransaction(row)

		result, err := env.uc.Confirm(ctx, row.ExternalID, "", domain.PaymentOutcomePending)
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionStatusPending, result.Status)
		assert.False(t, result.Granted)
	})

	t.Run("Unknown_Transaction", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)

		_, err := env.uc.Confirm(ctx, "purchase:nope", "", domain.PaymentOutcomeSuccess)
		assert.True(t, domain.HasCode(err, domain.ErrCodeUnknownTransaction), "got %v", err)
	})

	t.Run("Persistence_Failure_Rolls_Back", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		row := pendingPurchase("p1", "u1", time.Now())
		env.store.PutTransaction(row)

		env.store.FailNext(1)
		_, err := env.uc.Confirm(ctx, row.ExternalID, "", domain.PaymentOutcomeSuccess)
		assert.True(t, domain.HasCode(err, domain.ErrCodePersistence), "got %v", err)
		assert.Equal(t, domain.TransactionStatusPending, purchaseRows(env)[0].Status)
	})
}

func TestReconcilePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("By_Provider_Reference", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		row := pendingPurchase("p1", "u1", time.Now())
		reference := "tx-9"
		row.ProviderReference = &reference
		env.store.PutTransaction(row)

		env.provider.EXPECT().
			PaymentStatus(gomock.Any(), "tx-9").
			Return(&domain.ProviderPayment{TransID: "tx-9", Status: domain.ProviderStatusSuccessful}, nil)
		env.outbox.EXPECT().Dispatch(gomock.Any())

		result, err := env.uc.ReconcilePayment(ctx, "u1", row.ExternalID)
		require.NoError(t, err)
		assert.True(t, result.Granted)
	})

	t.Run("By_External_ID_Not_Found_Stays_Pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		row := pendingPurchase("p1", "u1", time.Now())
		env.store.PutTransaction(row)

		env.provider.EXPECT().
			FindPaymentByExternalID(gomock.Any(), row.ExternalID).
			Return(nil, nil)

		result, err := env.uc.ReconcilePayment(ctx, "u1", row.ExternalID)
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionStatusPending, result.Status)
		assert.False(t, result.AlreadyProcessed)
	})

	t.Run("Provider_Unreachable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		row := pendingPurchase("p1", "u1", time.Now())
		env.store.PutTransaction(row)

		env.provider.EXPECT().
			FindPaymentByExternalID(gomock.Any(), row.ExternalID).
			Return(nil, errors.New("connection refused"))

		_, err := env.uc.ReconcilePayment(ctx, "u1", row.ExternalID)
		assert.True(t, domain.HasCode(err, domain.ErrCodeProviderUnavailable), "got %v", err)
	})

	t.Run("Other_Users_Intent_Is_Unknown", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		row := pendingPurchase("p1", "u1", time.Now())
		env.store.PutTransaction(row)

		_, err := env.uc.ReconcilePayment(ctx, "u2", row.ExternalID)
		assert.True(t, domain.HasCode(err, domain.ErrCodeUnknownTransaction), "got %v", err)
	})

	t.Run("Settled_Intent_Is_Not_Rechecked", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnv(t, ctrl)
		row := pendingPurchase("p1", "u1", time.Now())
		row.Status = domain.TransactionStatusFailed
		env.store.PutTransaction(row)

		result, err := env.uc.ReconcilePayment(ctx, "u1", row.ExternalID)
		require.NoError(t, err)
		assert.True(t, result.AlreadyProcessed)
	})
}

func TestPollerPollOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	env := newTestEnv(t, ctrl)
	now := time.Now()

	paid := pendingPurchase("paid", "u1", now.Add(-5*time.Minute))
	stale := pendingPurchase("stale", "u1", now.Add(-2*time.Hour))
	unreachable := pendingPurchase("unreachable", "u1", now.Add(-3*time.Hour))
	fresh := pendingPurchase("fresh", "u1", now.Add(-10*time.Second))
	for _, row := range []*domain.Transaction{paid, stale, unreachable, fresh} {
		env.store.PutTransaction(row)
	}

	env.provider.EXPECT().FindPaymentByExternalID(gomock.Any(), paid.ExternalID).
		Return(&domain.ProviderPayment{TransID: "tx-paid", Status: domain.ProviderStatusSuccessful}, nil)
	env.provider.EXPECT().FindPaymentByExternalID(gomock.Any(), stale.ExternalID).
		Return(&domain.ProviderPayment{Status: domain.ProviderStatusPending}, nil)
	env.provider.EXPECT().FindPaymentByExternalID(gomock.Any(), unreachable.ExternalID).
		Return(nil, domain.ErrProviderTimeout)
	env.outbox.EXPECT().Dispatch(gomock.Any())

	poller := NewPoller(env.uc, PollerConfig{Interval: time.Minute, MinAge: time.Minute, BatchSize: 10}, logger.NewLogger("test", "debug"))
	resolved, err := poller.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resolved)

	statuses := map[string]domain.TransactionStatus{}
	for _, row := range purchaseRows(env) {
		statuses[row.ID] = row.Status
		if row.ID == "paid" {
			require.NotNil(t, row.ProviderReference)
			assert.Equal(t, "tx-paid", *row.ProviderReference)
		}
	}
	assert.Equal(t, domain.TransactionStatusCompleted, statuses["paid"])
	assert.Equal(t, domain.TransactionStatusFailed, statuses["stale"])
	assert.Equal(t, domain.TransactionStatusPending, statuses["unreachable"])
	assert.Equal(t, domain.TransactionStatusPending, statuses["fresh"])
}

func TestPollerStartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	env := newTestEnv(t, ctrl)

	poller := NewPoller(env.uc, PollerConfig{Interval: time.Hour}, logger.NewLogger("test", "debug"))
	poller.Start()
	poller.Start()
	poller.Stop()
}
