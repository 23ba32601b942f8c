package app

import (
	"github.com/redis/go-redis/v9"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/session"
)

func (a *application) InitAdSessionStore(client *redis.Client) domain.AdSessionStore {
	return session.NewRedisStore(client, a.config.Redis.KeyPrefix)
}
