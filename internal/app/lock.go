package app

import (
	"github.com/saradorri/edrewards/internal/infrastructure/lock"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
)

func (a *application) InitKeyLockManager(log *logger.Logger) *lock.KeyLockManager {
	return lock.NewKeyLockManager(log.Named("lock"))
}
