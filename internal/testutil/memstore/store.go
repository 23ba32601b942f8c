// Package memstore is an in-memory domain.Store for use case tests. Transactions
// are serialized and roll back by restoring a snapshot.
package memstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrInjected is returned by repositories while a failure is armed with FailNext
var ErrInjected = errors.New("injected store failure")

type state struct {
	users         map[string]domain.User
	machineTypes  map[string]domain.MachineType
	machines      map[string]domain.UserMachine
	transactions  map[string]domain.Transaction
	referrals     map[string]domain.Referral
	notifications map[string]domain.Notification
	withdrawals   map[string]domain.Withdrawal
	audit         []domain.AdminAuditLog
	outbox        map[string]domain.OutboxEvent
}

func newState() *state {
	return &state{
		users:         map[string]domain.User{},
		machineTypes:  map[string]domain.MachineType{},
		machines:      map[string]domain.UserMachine{},
		transactions:  map[string]domain.Transaction{},
		referrals:     map[string]domain.Referral{},
		notifications: map[string]domain.Notification{},
		withdrawals:   map[string]domain.Withdrawal{},
		outbox:        map[string]domain.OutboxEvent{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.machineTypes {
		c.machineTypes[k] = v
	}
	for k, v := range s.machines {
		c.machines[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.referrals {
		c.referrals[k] = v
	}
	for k, v := range s.notifications {
		c.notifications[k] = v
	}
	for k, v := range s.withdrawals {
		c.withdrawals[k] = v
	}
	c.audit = append(c.audit, s.audit...)
	for k, v := range s.outbox {
		c.outbox[k] = v
	}
	return c
}

// Store implements domain.Store in memory
type Store struct {
	mu       sync.Mutex
	data     *state
	failNext int
	// notifyErr fails every notification write while set
	notifyErr error
	// seq orders rows created within the same clock tick
	seq int64
}

// New creates an empty store
func New() *Store {
	return &Store{data: newState()}
}

// FailNext makes the next n repository calls return ErrInjected
func (s *Store) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

// FailNotifications makes notification writes return err until it is called with nil
func (s *Store) FailNotifications(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyErr = err
}

// Repos returns repositories that lock the store per call
func (s *Store) Repos() domain.Repositories {
	return s.repositories(false)
}

// WithinTransaction runs fn alone against the store and restores the previous
// state when fn fails
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(ctx, s.repositories(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) repositories(inTx bool) domain.Repositories {
	b := &base{store: s, inTx: inTx}
	return domain.Repositories{
		Users:         &userRepo{b},
		Machines:      &machineRepo{b},
		Transactions:  &transactionRepo{b},
		Referrals:     &referralRepo{b},
		Notifications: &notificationRepo{b},
		Withdrawals:   &withdrawalRepo{b},
		Audit:         &auditRepo{b},
		Outbox:        &outboxRepo{b},
	}
}

type base struct {
	store *Store
	inTx  bool
}

// do runs fn against the current state, taking the store lock outside transactions
func (b *base) do(fn func(s *state) error) error {
	if !b.inTx {
		b.store.mu.Lock()
		defer b.store.mu.Unlock()
	}
	if b.store.failNext > 0 {
		b.store.failNext--
		return ErrInjected
	}
	return fn(b.store.data)
}

func (b *base) nextSeq() time.Duration {
	b.store.seq++
	return time.Duration(b.store.seq)
}

// PutUser stores a user as is
func (s *Store) PutUser(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[user.ID] = *user
}

// PutMachineType stores a machine type as is
func (s *Store) PutMachineType(machineType *domain.MachineType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.machineTypes[machineType.ID] = *machineType
}

// PutMachine stores a user machine as is
func (s *Store) PutMachine(machine *domain.UserMachine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := *machine
	m.MachineType = nil
	s.data.machines[machine.ID] = m
}

// PutTransaction stores a transaction as is
func (s *Store) PutTransaction(transaction *domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.transactions[transaction.ID] = *transaction
}

// User returns a copy of a stored user
func (s *Store) User(id string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.users[id]
	if !ok {
		return nil
	}
	return &u
}

// Machine returns a copy of a stored user machine
func (s *Store) Machine(id string) *domain.UserMachine {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.data.machines[id]
	if !ok {
		return nil
	}
	return &m
}

// Transactions returns the stored transactions of a user matching the type; an
// empty type matches all
func (s *Store) Transactions(userID string, txType domain.TransactionType) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, t := range s.data.transactions {
		if t.UserID == userID && (txType == "" || t.Type == txType) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Notifications returns the stored notifications of a user
func (s *Store) Notifications(userID string) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Notification
	for _, n := range s.data.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// AuditLog returns the recorded admin actions
func (s *Store) AuditLog() []domain.AdminAuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AdminAuditLog(nil), s.data.audit...)
}

// OutboxEvents returns the stored outbox events
func (s *Store) OutboxEvents() []domain.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.OutboxEvent
	for _, e := range s.data.outbox {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type userRepo struct{ *base }

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	var out *domain.User
	err := r.do(func(s *state) error {
		if u, ok := s.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *userRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	var out *domain.User
	err := r.do(func(s *state) error {
		for _, u := range s.users {
			if u.Username == username {
				u := u
				out = &u
			}
		}
		return nil
	})
	return out, err
}

func (r *userRepo) GetByReferralCode(_ context.Context, code string) (*domain.User, error) {
	var out *domain.User
	err := r.do(func(s *state) error {
		for _, u := range s.users {
			if u.ReferralCode == code {
				u := u
				out = &u
			}
		}
		return nil
	})
	return out, err
}

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	return r.do(func(s *state) error {
		if _, ok := s.users[user.ID]; ok {
			return errors.New("duplicate user id")
		}
		user.CreatedAt = time.Now()
		user.UpdatedAt = user.CreatedAt
		s.users[user.ID] = *user
		return nil
	})
}

func (r *userRepo) AddWallet(_ context.Context, userID string, delta int64) (bool, error) {
	var ok bool
	err := r.do(func(s *state) error {
		u, found := s.users[userID]
		if !found || u.WalletBalance+delta < 0 {
			return nil
		}
		u.WalletBalance += delta
		s.users[userID] = u
		ok = true
		return nil
	})
	return ok, err
}

func (r *userRepo) AddED(_ context.Context, userID string, delta, earned decimal.Decimal) (bool, error) {
	var ok bool
	err := r.do(func(s *state) error {
		u, found := s.users[userID]
		if !found {
			return nil
		}
		u.EDBalance = u.EDBalance.Add(delta)
		u.TotalEarned = u.TotalEarned.Add(earned)
		s.users[userID] = u
		ok = true
		return nil
	})
	return ok, err
}

func (r *userRepo) SetBalances(_ context.Context, userID string, wallet int64, ed, totalEarned decimal.Decimal) error {
	return r.do(func(s *state) error {
		u, found := s.users[userID]
		if !found {
			return nil
		}
		u.WalletBalance = wallet
		u.EDBalance = ed
		u.TotalEarned = totalEarned
		s.users[userID] = u
		return nil
	})
}

type machineRepo struct{ *base }

func (r *machineRepo) withType(s *state, m domain.UserMachine) *domain.UserMachine {
	if mt, ok := s.machineTypes[m.MachineTypeID]; ok {
		m.MachineType = &mt
	}
	return &m
}

func (r *machineRepo) GetType(_ context.Context, id string) (*domain.MachineType, error) {
	var out *domain.MachineType
	err := r.do(func(s *state) error {
		if mt, ok := s.machineTypes[id]; ok {
			out = &mt
		}
		return nil
	})
	return out, err
}

func (r *machineRepo) ListTypes(_ context.Context) ([]*domain.MachineType, error) {
	var out []*domain.MachineType
	err := r.do(func(s *state) error {
		for _, mt := range s.machineTypes {
			mt := mt
			out = append(out, &mt)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
		return nil
	})
	return out, err
}

func (r *machineRepo) UpsertType(_ context.Context, machineType *domain.MachineType) error {
	return r.do(func(s *state) error {
		s.machineTypes[machineType.ID] = *machineType
		return nil
	})
}

func (r *machineRepo) CreateUserMachine(_ context.Context, machine *domain.UserMachine) (bool, error) {
	var created bool
	err := r.do(func(s *state) error {
		for _, m := range s.machines {
			if m.UserID == machine.UserID && m.MachineTypeID == machine.MachineTypeID {
				return nil
			}
		}
		machine.CreatedAt = time.Now().Add(r.nextSeq())
		machine.UpdatedAt = machine.CreatedAt
		m := *machine
		m.MachineType = nil
		s.machines[machine.ID] = m
		created = true
		return nil
	})
	return created, err
}

func (r *machineRepo) GetUserMachine(_ context.Context, id string) (*domain.UserMachine, error) {
	var out *domain.UserMachine
	err := r.do(func(s *state) error {
		if m, ok := s.machines[id]; ok {
			out = r.withType(s, m)
		}
		return nil
	})
	return out, err
}

func (r *machineRepo) GetUserMachineForUpdate(ctx context.Context, id string) (*domain.UserMachine, error) {
	return r.GetUserMachine(ctx, id)
}

func (r *machineRepo) GetUserMachineByType(_ context.Context, userID, machineTypeID string) (*domain.UserMachine, error) {
	var out *domain.UserMachine
	err := r.do(func(s *state) error {
		for _, m := range s.machines {
			if m.UserID == userID && m.MachineTypeID == machineTypeID {
				m := m
				out = &m
			}
		}
		return nil
	})
	return out, err
}

func (r *machineRepo) ListUserMachines(_ context.Context, userID string) ([]*domain.UserMachine, error) {
	var out []*domain.UserMachine
	err := r.do(func(s *state) error {
		for _, m := range s.machines {
			if m.UserID == userID {
				out = append(out, r.withType(s, m))
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
		return nil
	})
	return out, err
}

func (r *machineRepo) CountUserMachines(_ context.Context, userID string) (int64, error) {
	var count int64
	err := r.do(func(s *state) error {
		for _, m := range s.machines {
			if m.UserID == userID {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *machineRepo) Activate(_ context.Context, id string, at time.Time) (bool, error) {
	var ok bool
	err := r.do(func(s *state) error {
		m, found := s.machines[id]
		if !found || m.IsActive {
			return nil
		}
		m.IsActive = true
		m.ActivatedAt = &at
		s.machines[id] = m
		ok = true
		return nil
	})
	return ok, err
}

func (r *machineRepo) RecordClaim(_ context.Context, id string, amount decimal.Decimal, at time.Time) error {
	return r.do(func(s *state) error {
		m, found := s.machines[id]
		if !found {
			return nil
		}
		m.IsActive = false
		m.LastClaimTime = &at
		m.TotalEarned = m.TotalEarned.Add(amount)
		s.machines[id] = m
		return nil
	})
}

type transactionRepo struct{ *base }

func (r *transactionRepo) Insert(_ context.Context, transaction *domain.Transaction) (bool, error) {
	var inserted bool
	err := r.do(func(s *state) error {
		for _, t := range s.transactions {
			if t.ExternalID == transaction.ExternalID {
				return nil
			}
		}
		if transaction.CreatedAt.IsZero() {
			transaction.CreatedAt = time.Now()
		}
		transaction.UpdatedAt = transaction.CreatedAt
		s.transactions[transaction.ID] = *transaction
		inserted = true
		return nil
	})
	return inserted, err
}

func (r *transactionRepo) find(match func(t domain.Transaction) bool) (*domain.Transaction, error) {
	var out *domain.Transaction
	err := r.do(func(s *state) error {
		for _, t := range s.transactions {
			if match(t) {
				t := t
				out = &t
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *transactionRepo) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	return r.find(func(t domain.Transaction) bool { return t.ID == id })
}

func (r *transactionRepo) GetByExternalID(_ context.Context, externalID string) (*domain.Transaction, error) {
	return r.find(func(t domain.Transaction) bool { return t.ExternalID == externalID })
}

func (r *transactionRepo) GetByExternalIDForUpdate(ctx context.Context, externalID string) (*domain.Transaction, error) {
	return r.GetByExternalID(ctx, externalID)
}

func (r *transactionRepo) GetByUserID(_ context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	err := r.do(func(s *state) error {
		for _, t := range s.transactions {
			if t.UserID == userID {
				t := t
				out = append(out, &t)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		out = page(out, limit, offset)
		return nil
	})
	return out, err
}

func (r *transactionRepo) UpdateStatus(_ context.Context, id string, from, to domain.TransactionStatus) (bool, error) {
	var ok bool
	err := r.do(func(s *state) error {
		t, found := s.transactions[id]
		if !found || t.Status != from {
			return nil
		}
		now := time.Now()
		t.Status = to
		t.UpdatedAt = now
		if to == domain.TransactionStatusCompleted {
			t.CompletedAt = &now
		}
		s.transactions[id] = t
		ok = true
		return nil
	})
	return ok, err
}

func (r *transactionRepo) SetProviderReference(_ context.Context, id, reference string) error {
	return r.do(func(s *state) error {
		t, found := s.transactions[id]
		if !found {
			return nil
		}
		t.ProviderReference = &reference
		s.transactions[id] = t
		return nil
	})
}

func (r *transactionRepo) FindPendingByPrefix(_ context.Context, userID, prefix string, since time.Time) (*domain.Transaction, error) {
	var out *domain.Transaction
	err := r.do(func(s *state) error {
		for _, t := range s.transactions {
			if t.UserID != userID || t.Status != domain.TransactionStatusPending ||
				!strings.HasPrefix(t.ExternalID, prefix) || !t.CreatedAt.After(since) {
				continue
			}
			if out == nil || t.CreatedAt.After(out.CreatedAt) {
				t := t
				out = &t
			}
		}
		return nil
	})
	return out, err
}

func (r *transactionRepo) ListPendingBefore(_ context.Context, txType domain.TransactionType, before time.Time, limit int) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	err := r.do(func(s *state) error {
		for _, t := range s.transactions {
			if t.Type == txType && t.Status == domain.TransactionStatusPending && t.CreatedAt.Before(before) {
				t := t
				out = append(out, &t)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

func (r *transactionRepo) LastCompletedOfTypes(_ context.Context, userID string, types []domain.TransactionType) (*domain.Transaction, error) {
	var out *domain.Transaction
	err := r.do(func(s *state) error {
		for _, t := range s.transactions {
			if t.UserID != userID || t.Status != domain.TransactionStatusCompleted || !containsType(types, t.Type) {
				continue
			}
			if out == nil || completedAt(t).After(completedAt(*out)) {
				t := t
				out = &t
			}
		}
		return nil
	})
	return out, err
}

func (r *transactionRepo) SumCompleted(_ context.Context, userID string) (domain.LedgerTotals, error) {
	totals := domain.LedgerTotals{ED: decimal.Zero, TotalEarned: decimal.Zero}
	err := r.do(func(s *state) error {
		wallet := decimal.Zero
		for _, t := range s.transactions {
			if t.UserID != userID || t.Status != domain.TransactionStatusCompleted || !t.Type.AffectsBalance() {
				continue
			}
			switch t.Currency {
			case domain.CurrencyXAF:
				wallet = wallet.Add(t.Amount)
			case domain.CurrencyED:
				totals.ED = totals.ED.Add(t.Amount)
				if t.Type.IsEarning() && t.Amount.IsPositive() {
					totals.TotalEarned = totals.TotalEarned.Add(t.Amount)
				}
			}
		}
		totals.Wallet = wallet.IntPart()
		return nil
	})
	return totals, err
}

func containsType(types []domain.TransactionType, t domain.TransactionType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func completedAt(t domain.Transaction) time.Time {
	if t.CompletedAt != nil {
		return *t.CompletedAt
	}
	return t.CreatedAt
}

type referralRepo struct{ *base }

func (r *referralRepo) Ensure(_ context.Context, referral *domain.Referral) error {
	return r.do(func(s *state) error {
		for _, existing := range s.referrals {
			if existing.ReferrerID == referral.ReferrerID && existing.ReferredID == referral.ReferredID {
				return nil
			}
		}
		if referral.ID == "" {
			referral.ID = uuid.NewString()
		}
		if referral.Status == "" {
			referral.Status = domain.ReferralStatusPending
		}
		referral.CreatedAt = time.Now()
		referral.UpdatedAt = referral.CreatedAt
		s.referrals[referral.ID] = *referral
		return nil
	})
}

func (r *referralRepo) GetForUpdate(_ context.Context, referrerID, referredID string) (*domain.Referral, error) {
	var out *domain.Referral
	err := r.do(func(s *state) error {
		for _, existing := range s.referrals {
			if existing.ReferrerID == referrerID && existing.ReferredID == referredID {
				existing := existing
				out = &existing
			}
		}
		return nil
	})
	return out, err
}

func (r *referralRepo) Complete(_ context.Context, id string, bonus int64, at time.Time) (bool, error) {
	var ok bool
	err := r.do(func(s *state) error {
		existing, found := s.referrals[id]
		if !found || existing.Status != domain.ReferralStatusPending || existing.Bonus != 0 {
			return nil
		}
		existing.Status = domain.ReferralStatusCompleted
		existing.Bonus = bonus
		existing.CompletedAt = &at
		s.referrals[id] = existing
		ok = true
		return nil
	})
	return ok, err
}

func (r *referralRepo) ListByReferrer(_ context.Context, referrerID string) ([]*domain.Referral, error) {
	var out []*domain.Referral
	err := r.do(func(s *state) error {
		for _, existing := range s.referrals {
			if existing.ReferrerID == referrerID {
				existing := existing
				out = append(out, &existing)
			}
		}
		return nil
	})
	return out, err
}

type notificationRepo struct{ *base }

func (r *notificationRepo) Create(_ context.Context, notification *domain.Notification) (bool, error) {
	var created bool
	err := r.do(func(s *state) error {
		if r.store.notifyErr != nil {
			return r.store.notifyErr
		}
		for _, existing := range s.notifications {
			if existing.DedupKey == notification.DedupKey {
				return nil
			}
		}
		if notification.ID == "" {
			notification.ID = uuid.NewString()
		}
		notification.CreatedAt = time.Now().Add(r.nextSeq())
		s.notifications[notification.ID] = *notification
		created = true
		return nil
	})
	return created, err
}

func (r *notificationRepo) GetByUserID(_ context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	var out []*domain.Notification
	err := r.do(func(s *state) error {
		for _, n := range s.notifications {
			if n.UserID == userID {
				n := n
				out = append(out, &n)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		out = page(out, limit, offset)
		return nil
	})
	return out, err
}

func (r *notificationRepo) MarkRead(_ context.Context, userID, id string) (bool, error) {
	var ok bool
	err := r.do(func(s *state) error {
		n, found := s.notifications[id]
		if !found || n.UserID != userID {
			return nil
		}
		n.Read = true
		s.notifications[id] = n
		ok = true
		return nil
	})
	return ok, err
}

type withdrawalRepo struct{ *base }

func (r *withdrawalRepo) Create(_ context.Context, withdrawal *domain.Withdrawal) error {
	return r.do(func(s *state) error {
		withdrawal.CreatedAt = time.Now().Add(r.nextSeq())
		withdrawal.UpdatedAt = withdrawal.CreatedAt
		s.withdrawals[withdrawal.ID] = *withdrawal
		return nil
	})
}

func (r *withdrawalRepo) GetByID(_ context.Context, id string) (*domain.Withdrawal, error) {
	var out *domain.Withdrawal
	err := r.do(func(s *state) error {
		if w, ok := s.withdrawals[id]; ok {
			out = &w
		}
		return nil
	})
	return out, err
}

func (r *withdrawalRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Withdrawal, error) {
	return r.GetByID(ctx, id)
}

func (r *withdrawalRepo) list(match func(w domain.Withdrawal) bool, newestFirst bool, limit, offset int) ([]*domain.Withdrawal, error) {
	var out []*domain.Withdrawal
	err := r.do(func(s *state) error {
		for _, w := range s.withdrawals {
			if match(w) {
				w := w
				out = append(out, &w)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if newestFirst {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
		out = page(out, limit, offset)
		return nil
	})
	return out, err
}

func (r *withdrawalRepo) GetByUserID(_ context.Context, userID string, limit, offset int) ([]*domain.Withdrawal, error) {
	return r.list(func(w domain.Withdrawal) bool { return w.UserID == userID }, true, limit, offset)
}

func (r *withdrawalRepo) ListByStatus(_ context.Context, status domain.WithdrawalStatus, limit, offset int) ([]*domain.Withdrawal, error) {
	return r.list(func(w domain.Withdrawal) bool { return w.Status == status }, false, limit, offset)
}

func (r *withdrawalRepo) Review(_ context.Context, id string, to domain.WithdrawalStatus, reviewerID, reason string, at time.Time) (bool, error) {
	var ok bool
	err := r.do(func(s *state) error {
		w, found := s.withdrawals[id]
		if !found || w.Status != domain.WithdrawalStatusPending {
			return nil
		}
		w.Status = to
		w.ReviewedBy = &reviewerID
		w.ReviewedAt = &at
		w.Reason = reason
		s.withdrawals[id] = w
		ok = true
		return nil
	})
	return ok, err
}

type auditRepo struct{ *base }

func (r *auditRepo) Create(_ context.Context, entry *domain.AdminAuditLog) error {
	return r.do(func(s *state) error {
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = time.Now()
		}
		s.audit = append(s.audit, *entry)
		return nil
	})
}

func (r *auditRepo) GetByTargetUserID(_ context.Context, userID string, limit, offset int) ([]*domain.AdminAuditLog, error) {
	var out []*domain.AdminAuditLog
	err := r.do(func(s *state) error {
		for i := len(s.audit) - 1; i >= 0; i-- {
			if s.audit[i].TargetUserID == userID {
				entry := s.audit[i]
				out = append(out, &entry)
			}
		}
		out = page(out, limit, offset)
		return nil
	})
	return out, err
}

type outboxRepo struct{ *base }

func (r *outboxRepo) Save(_ context.Context, event *domain.OutboxEvent) error {
	return r.do(func(s *state) error {
		if event.ID == "" {
			event.ID = uuid.NewString()
		}
		if event.Status == "" {
			event.Status = domain.EventStatusPending
		}
		if event.CreatedAt.IsZero() {
			event.CreatedAt = time.Now().Add(r.nextSeq())
		}
		s.outbox[event.ID] = *event
		return nil
	})
}

func (r *outboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var out []*domain.OutboxEvent
	err := r.do(func(s *state) error {
		for _, e := range s.outbox {
			if e.Status == domain.EventStatusPending {
				e := e
				out = append(out, &e)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

func (r *outboxRepo) update(eventID string, fn func(e *domain.OutboxEvent)) error {
	return r.do(func(s *state) error {
		e, found := s.outbox[eventID]
		if !found {
			return nil
		}
		fn(&e)
		s.outbox[eventID] = e
		return nil
	})
}

func (r *outboxRepo) MarkAsProcessed(_ context.Context, eventID string) error {
	return r.update(eventID, func(e *domain.OutboxEvent) {
		if e.Status != domain.EventStatusPending {
			return
		}
		now := time.Now()
		e.Status = domain.EventStatusProcessed
		e.ProcessedAt = &now
	})
}

func (r *outboxRepo) MarkAsFailed(_ context.Context, eventID string, errMsg string) error {
	return r.update(eventID, func(e *domain.OutboxEvent) {
		e.Status = domain.EventStatusFailed
		e.Error = &errMsg
	})
}

func (r *outboxRepo) IncrementRetryCount(_ context.Context, eventID string, errMsg string) error {
	return r.update(eventID, func(e *domain.OutboxEvent) {
		e.RetryCount++
		e.Error = &errMsg
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
