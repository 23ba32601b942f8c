package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyLockManager(t *testing.T) {
	ctx := context.Background()

	t.Run("TryLock_Respects_Held_Lock", func(t *testing.T) {
		m := NewKeyLockManager(logger.NewLogger("test", "debug"))

		require.NoError(t, m.Lock(ctx, "user:u1"))
		assert.False(t, m.TryLock("user:u1"))
		assert.True(t, m.TryLock("user:u2"))

		m.Unlock("user:u1")
		assert.True(t, m.TryLock("user:u1"))
	})

	t.Run("Lock_Times_Out", func(t *testing.T) {
		m := NewKeyLockManagerWithTimeout(logger.NewLogger("test", "debug"), 50*time.Millisecond)

		require.NoError(t, m.Lock(ctx, "machine:m1"))
		start := time.Now()
		err := m.Lock(ctx, "machine:m1")
		assert.Error(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("Lock_Honours_Context", func(t *testing.T) {
		m := NewKeyLockManager(logger.NewLogger("test", "debug"))
		require.NoError(t, m.Lock(ctx, "machine:m1"))

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := m.Lock(cancelled, "machine:m1")
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	})

	t.Run("Unlock_Without_Lock_Is_Harmless", func(t *testing.T) {
		m := NewKeyLockManager(logger.NewLogger("test", "debug"))
		m.Unlock("nobody")
		require.NoError(t, m.Lock(ctx, "nobody"))
		m.Unlock("nobody")
		m.Unlock("nobody")
		assert.True(t, m.TryLock("nobody"))
	})

	t.Run("Serializes_Same_Key", func(t *testing.T) {
		m := NewKeyLockManager(logger.NewLogger("test", "debug"))
		counter := 0
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := m.Lock(ctx, "user:u1"); err != nil {
					t.Error(err)
					return
				}
				defer m.Unlock("user:u1")
				current := counter
				time.Sleep(time.Millisecond)
				counter = current + 1
			}()
		}
		wg.Wait()
		assert.Equal(t, 50, counter)
	})

	t.Run("Idle_Keys_Are_Evicted", func(t *testing.T) {
		m := NewKeyLockManagerWithTimeout(logger.NewLogger("test", "debug"), 20*time.Millisecond)

		for i := 0; i < 100; i++ {
			key := fmt.Sprintf("user:%d", i)
			require.NoError(t, m.Lock(ctx, key))
			m.Unlock(key)
		}
		assert.Equal(t, 0, m.Len())

		require.NoError(t, m.Lock(ctx, "user:busy"))
		assert.False(t, m.TryLock("user:busy"))
		assert.Error(t, m.Lock(ctx, "user:busy"))
		assert.Equal(t, 1, m.Len())

		m.Unlock("user:busy")
		assert.Equal(t, 0, m.Len())
	})
}
