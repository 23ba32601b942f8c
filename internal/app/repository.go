package app

import (
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/repository"
	"gorm.io/gorm"
)

func (a *application) InitStore(db *gorm.DB) domain.Store {
	return repository.NewStore(db)
}

func (a *application) InitUserRepository(store domain.Store) domain.UserRepository {
	return store.Repos().Users
}

func (a *application) InitNotificationRepository(store domain.Store) domain.NotificationRepository {
	return store.Repos().Notifications
}

func (a *application) InitOutboxRepository(store domain.Store) domain.OutboxRepository {
	return store.Repos().Outbox
}
