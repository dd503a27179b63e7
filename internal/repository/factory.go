package repository

import (
	"context"
	"fmt"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/config"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/database"
	"github.com/rs/zerolog"
)

// NewResultStore выбирает хранилище по store.driver.
func NewResultStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (ResultStore, error) {
	log := logger.With().Str("store", cfg.Store.Driver).Logger()

	switch cfg.Store.Driver {
	case "memory", "":
		return NewMemoryStore(), nil

	case "none":
		return NoneStore{}, nil

	case "redis":
		client, err := NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
		return NewRedisStore(client, cfg.Store.Namespace, log), nil

	case "minio":
		m := cfg.MinIO
		return NewMinIOStore(m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket, m.Region, m.UseSSL, m.ConnectTimeout, cfg.Store.Namespace, log)

	case "postgres":
		db, err := database.Open(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(db, cfg.Store.Namespace, log), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Store.Driver)
}
