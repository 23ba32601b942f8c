package repository

import (
	"context"
	"time"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionRepository implements domain.TransactionRepository
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) domain.TransactionRepository {
	return &TransactionRepository{db: db}
}

// Insert creates the transaction unless its external id is already taken
func (r *TransactionRepository) Insert(ctx context.Context, transaction *domain.Transaction) (bool, error) {
	now := time.Now()
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = now
	}
	transaction.UpdatedAt = now

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "external_id"}}, DoNothing: true}).
		Create(transaction)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// GetByID retrieves a transaction by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return findOne[domain.Transaction](r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByExternalID retrieves a transaction by its idempotency key
func (r *TransactionRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Transaction, error) {
	return findOne[domain.Transaction](r.db.WithContext(ctx).Where("external_id = ?", externalID))
}

// GetByExternalIDForUpdate retrieves a transaction by its idempotency key and locks the row
func (r *TransactionRepository) GetByExternalIDForUpdate(ctx context.Context, externalID string) (*domain.Transaction, error) {
	return findOne[domain.Transaction](forUpdate(r.db.WithContext(ctx)).Where("external_id = ?", externalID))
}

// GetByUserID retrieves transactions for a user with pagination
func (r *TransactionRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	var transactions []*domain.Transaction
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transactions)

	if result.Error != nil {
		return nil, result.Error
	}

	return transactions, nil
}

// UpdateStatus moves a transaction between statuses
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id string, from, to domain.TransactionStatus) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": now,
	}

	if to == domain.TransactionStatusCompleted {
		updates["completed_at"] = &now
	}

	result := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SetProviderReference stores the provider's id for the payment
func (r *TransactionRepository) SetProviderReference(ctx context.Context, id, reference string) error {
	return r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"provider_reference": reference,
			"updated_at":         time.Now(),
		}).Error
}

// FindPendingByPrefix returns the newest pending transaction of a user with the external id prefix
func (r *TransactionRepository) FindPendingByPrefix(ctx context.Context, userID, prefix string, since time.Time) (*domain.Transaction, error) {
	return findOne[domain.Transaction](r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND external_id LIKE ? AND created_at > ?",
			userID, domain.TransactionStatusPending, escapeLike(prefix)+"%", since).
		Order("created_at DESC"))
}

// ListPendingBefore returns the oldest pending transactions of a type created before the cutoff
func (r *TransactionRepository) ListPendingBefore(ctx context.Context, txType domain.TransactionType, before time.Time, limit int) ([]*domain.Transaction, error) {
	var transactions []*domain.Transaction
	result := r.db.WithContext(ctx).
		Where("type = ? AND status = ? AND created_at < ?", txType, domain.TransactionStatusPending, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&transactions)
	if result.Error != nil {
		return nil, result.Error
	}
	return transactions, nil
}

// LastCompletedOfTypes returns the newest completed transaction of the given types
func (r *TransactionRepository) LastCompletedOfTypes(ctx context.Context, userID string, types []domain.TransactionType) (*domain.Transaction, error) {
	return findOne[domain.Transaction](r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND type IN ?", userID, domain.TransactionStatusCompleted, types).
		Order("completed_at DESC NULLS LAST, created_at DESC"))
}

type ledgerSums struct {
	Wallet decimal.Decimal
	ED     decimal.Decimal
	Earned decimal.Decimal
}

// SumCompleted recomputes balances from completed, balance-affecting transactions
func (r *TransactionRepository) SumCompleted(ctx context.Context, userID string) (domain.LedgerTotals, error) {
	var sums ledgerSums
	err := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select(`COALESCE(SUM(CASE WHEN currency = ? THEN amount END), 0) AS wallet,
			COALESCE(SUM(CASE WHEN currency = ? THEN amount END), 0) AS ed,
			COALESCE(SUM(CASE WHEN currency = ? AND type IN ? AND amount > 0 THEN amount END), 0) AS earned`,
			domain.CurrencyXAF,
			domain.CurrencyED,
			domain.CurrencyED, []domain.TransactionType{domain.TransactionTypeEarningClaim, domain.TransactionTypeAdReward}).
		Where("user_id = ? AND status = ? AND type NOT IN ?", userID, domain.TransactionStatusCompleted,
			[]domain.TransactionType{domain.TransactionTypeMachinePurchase, domain.TransactionTypeReconciliation}).
		Scan(&sums).Error
	if err != nil {
		return domain.LedgerTotals{}, err
	}

	return domain.LedgerTotals{
		Wallet:      sums.Wallet.IntPart(),
		ED:          sums.ED,
		TotalEarned: sums.Earned,
	}, nil
}
