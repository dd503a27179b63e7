package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore: каждый запуск лежит JSON-строкой под <ns>:<key>,
// ZSET <ns>:index хранит ключи со временем сохранения в score.
type RedisStore struct {
	client    *redis.Client
	namespace string
	logger    zerolog.Logger
}

func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client, namespace string, logger zerolog.Logger) *RedisStore {
	return &RedisStore{client: client, namespace: namespace, logger: logger}
}

func (s *RedisStore) runKey(key string) string { return s.namespace + ":" + key }

func (s *RedisStore) indexKey() string { return s.namespace + ":index" }

func (s *RedisStore) Save(ctx context.Context, run models.StoredRun) error {
	if err := validateRun(run); err != nil {
		return err
	}

	body, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	score := float64(time.Now().UnixNano())
	if ts, err := time.Parse(models.RunKeyLayout, run.Key); err == nil {
		score = float64(ts.UnixNano())
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.runKey(run.Key), body, 0)
		p.ZAdd(ctx, s.indexKey(), redis.Z{Score: score, Member: run.Key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save run to redis: %w", err)
	}

	s.logger.Debug().Str("key", s.runKey(run.Key)).Int("bytes", len(body)).Msg("Run saved to Redis")
	return nil
}

func (s *RedisStore) List(ctx context.Context, limit int) ([]models.StoredRun, error) {
	limit = normalizeLimit(limit)

	keys, err := s.client.ZRevRange(ctx, s.indexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run index: %w", err)
	}
	if len(keys) == 0 {
		return []models.StoredRun{}, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.runKey(k)
	}

	values, err := s.client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	runs := make([]models.StoredRun, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// индекс пережил сам ключ
			s.logger.Warn().Str("key", full[i]).Msg("Run listed in index but missing")
			continue
		}
		var run models.StoredRun
		if err := json.Unmarshal([]byte(raw), &run); err != nil {
			s.logger.Warn().Err(err).Str("key", full[i]).Msg("Skipping undecodable run")
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*models.StoredRun, error) {
	raw, err := s.client.Get(ctx, s.runKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var run models.StoredRun
	if err := json.Unmarshal(raw, &run); err != nil {
		return nil, fmt.Errorf("failed to decode run: %w", err)
	}
	return &run, nil
}

func (s *RedisStore) Driver() string { return "redis" }

func (s *RedisStore) Close() error { return s.client.Close() }
