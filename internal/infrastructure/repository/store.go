package repository

import (
	"context"

	"github.com/saradorri/edrewards/internal/domain"
	"gorm.io/gorm"
)

// Store implements domain.Store on top of gorm
type Store struct {
	db    *gorm.DB
	repos domain.Repositories
}

// NewStore creates a store bound to db
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, repos: newRepositories(db)}
}

func newRepositories(db *gorm.DB) domain.Repositories {
	return domain.Repositories{
		Users:         NewUserRepository(db),
		Machines:      NewMachineRepository(db),
		Transactions:  NewTransactionRepository(db),
		Referrals:     NewReferralRepository(db),
		Notifications: NewNotificationRepository(db),
		Withdrawals:   NewWithdrawalRepository(db),
		Audit:         NewAuditRepository(db),
		Outbox:        NewOutboxRepository(db),
	}
}

// Repos returns repositories outside of any transaction
func (s *Store) Repos() domain.Repositories {
	return s.repos
}

// WithinTransaction runs fn with repositories bound to a single database transaction
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, newRepositories(tx))
	})
}
