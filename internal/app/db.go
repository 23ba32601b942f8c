package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/saradorri/edrewards/internal/infrastructure/database"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *application) InitDatabase(lc fx.Lifecycle, log *logger.Logger) (*gorm.DB, error) {
	dbConfig := &database.Config{
		Host:            a.config.Database.Host,
		Port:            a.config.Database.Port,
		User:            a.config.Database.User,
		Password:        a.config.Database.Password,
		Name:            a.config.Database.Name,
		SSLMode:         a.config.Database.SSLMode,
		MaxIdleConns:    a.config.Database.MaxIdleConns,
		MaxOpenConns:    a.config.Database.MaxOpenConns,
		ConnMaxLifetime: a.config.Database.ConnMaxLifetime,
	}
	db, err := database.NewDatabase(dbConfig)
	if err != nil {
		return nil, err
	}
	log.Info("Database connected",
		zap.String("host", dbConfig.Host),
		zap.String("name", dbConfig.Name))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return db.Close()
		},
	})
	return db.GetDB(), nil
}

func (a *application) InitRedis(lc fx.Lifecycle, log *logger.Logger) (*redis.Client, error) {
	client, err := database.ConnectRedis(a.ctx, &database.RedisConfig{
		Addr:     a.config.Redis.Addr,
		Password: a.config.Redis.Password,
		DB:       a.config.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	log.Info("Redis connected", zap.String("addr", a.config.Redis.Addr))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}
