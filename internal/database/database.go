// Package database opens the Postgres and Redis connections at startup.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/quocanhngo/farmiot/internal/config"
	"github.com/quocanhngo/farmiot/internal/model"
	"github.com/quocanhngo/farmiot/migrations"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectTimeout = time.Minute

// Models lists every table AutoMigrate must manage
var Models = []interface{}{
	&model.Farm{},
	&model.Device{},
	&model.Reading{},
}

// retry runs op with exponential backoff until it succeeds or maxElapsed passes
func retry(name string, maxElapsed time.Duration, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = maxElapsed

	attempt := 0
	return backoff.RetryNotify(op, bo, func(err error, wait time.Duration) {
		attempt++
		logrus.WithFields(logrus.Fields{
			"target":  name,
			"attempt": attempt,
			"retry":   wait.String(),
		}).WithError(err).Warn("⏳ Connection failed, retrying")
	})
}

// OpenPostgres connects gorm to Postgres, retrying while the server comes up.
// dbLogger may be nil for the env-based default.
func OpenPostgres(cfg *config.Config, dbLogger logger.Interface) (*gorm.DB, error) {
	if dbLogger == nil {
		dbLogger = logger.Default.LogMode(logger.Info)
		if cfg.App.Env == "production" {
			dbLogger = logger.Default.LogMode(logger.Warn)
		}
	}

	var db *gorm.DB
	err := retry("postgres", connectTimeout, func() error {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
			Logger:         dbLogger,
			TranslateError: true,
			NowFunc:        func() time.Time { return time.Now().UTC() },
		})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		return sqlDB.Ping()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate applies the SQL migrations, falling back to AutoMigrate when they
// cannot run
func Migrate(cfg *config.Config, db *gorm.DB) error {
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		logrus.WithError(err).Warn("⚠️  Migration warning")
		logrus.Info("📦 Falling back to GORM AutoMigrate...")
		if err := db.AutoMigrate(Models...); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	return nil
}

// OpenRedis connects to Redis, retrying while the server comes up
func OpenRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	err := retry("redis", connectTimeout, func() error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}
