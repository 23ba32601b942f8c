package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DefaultTimeout bounds how long Lock waits for a busy key
const DefaultTimeout = 5 * time.Second

// KeyLockManager serializes work per key (a user id, a machine id) inside this process.
// It only narrows contention; correctness still comes from row locks in the store.
// An entry lives only while a holder or waiter references its key.
type KeyLockManager struct {
	mu      sync.Mutex
	locks   map[string]*keyLock
	timeout time.Duration
	logger  *logger.Logger
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

// NewKeyLockManager creates a lock manager with the default timeout
func NewKeyLockManager(log *logger.Logger) *KeyLockManager {
	return NewKeyLockManagerWithTimeout(log, DefaultTimeout)
}

// NewKeyLockManagerWithTimeout creates a lock manager with a custom acquire timeout
func NewKeyLockManagerWithTimeout(log *logger.Logger, timeout time.Duration) *KeyLockManager {
	log.Info("KeyLockManager initialized", zap.Duration("timeout", timeout))
	return &KeyLockManager{
		locks:   make(map[string]*keyLock),
		timeout: timeout,
		logger:  log,
	}
}

// Lock acquires the lock for key, giving up on ctx cancellation or timeout
func (m *KeyLockManager) Lock(ctx context.Context, key string) error {
	m.logger.Debug("Attempting to acquire lock", zap.String("key", key))
	entry := m.acquire(key)

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case entry.sem <- struct{}{}:
		m.logger.Debug("Successfully acquired lock", zap.String("key", key))
		return nil
	case <-ctx.Done():
		m.release(key)
		m.logger.Warn("Failed to acquire lock: context cancelled", zap.String("key", key), zap.Error(ctx.Err()))
		return fmt.Errorf("failed to acquire lock for %s: %w", key, ctx.Err())
	case <-timer.C:
		m.release(key)
		m.logger.Warn("Failed to acquire lock: timeout", zap.String("key", key), zap.Duration("timeout", m.timeout))
		return fmt.Errorf("failed to acquire lock for %s: timeout", key)
	}
}

// Unlock releases the lock for key
func (m *KeyLockManager) Unlock(key string) {
	m.mu.Lock()
	entry, ok := m.locks[key]
	m.mu.Unlock()
	if !ok {
		m.logger.Warn("No lock found during unlock", zap.String("key", key))
		return
	}
	select {
	case <-entry.sem:
		m.release(key)
		m.logger.Debug("Successfully released lock", zap.String("key", key))
	default:
		m.logger.Warn("Unlock of a key that is not locked", zap.String("key", key))
	}
}

// TryLock attempts to acquire a lock without blocking
func (m *KeyLockManager) TryLock(key string) bool {
	entry := m.acquire(key)
	select {
	case entry.sem <- struct{}{}:
		return true
	default:
		m.release(key)
		return false
	}
}

// Len returns the number of keys currently held or waited on
func (m *KeyLockManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// acquire references the entry of key, creating it when absent
func (m *KeyLockManager) acquire(key string) *keyLock {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[key]
	if !ok {
		entry = &keyLock{sem: make(chan struct{}, 1)}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release drops one reference and forgets the key once nobody holds or waits on it
func (m *KeyLockManager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}
