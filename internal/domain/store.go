package domain

import "context"

// Repositories groups the repositories bound to one database handle
type Repositories struct {
	Users         UserRepository
	Machines      MachineRepository
	Transactions  TransactionRepository
	Referrals     ReferralRepository
	Notifications NotificationRepository
	Withdrawals   WithdrawalRepository
	Audit         AuditRepository
	Outbox        OutboxRepository
}

// Store gives access to repositories and runs units of work.
// WithinTransaction commits when fn returns nil and rolls back otherwise.
type Store interface {
	Repos() Repositories
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
