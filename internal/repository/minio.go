package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// MinIOStore хранит каждый запуск объектом <ns>/<key>.json.
type MinIOStore struct {
	client    *minio.Client
	bucket    string
	region    string
	namespace string
	logger    zerolog.Logger

	ensureMu      sync.Mutex
	bucketEnsured bool
}

func NewMinIOStore(endpoint, accessKey, secretKey, bucket, region string, useSSL bool, connectTimeout time.Duration, namespace string, logger zerolog.Logger) (*MinIOStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := &MinIOStore{
		client:    client,
		bucket:    bucket,
		region:    region,
		namespace: namespace,
		logger:    logger,
	}

	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	// MinIO может подняться позже клиента: не падаем, повторим при записи
	if err := s.ensureBucket(ctx); err != nil {
		logger.Error().Err(err).
			Str("endpoint", endpoint).
			Str("bucket", bucket).
			Msg("MinIO not ready during startup, will retry on demand")
	}

	logger.Info().
		Str("endpoint", endpoint).
		Str("bucket", bucket).
		Bool("ssl", useSSL).
		Msg("Connected to MinIO")

	return s, nil
}

func (s *MinIOStore) ensureBucket(ctx context.Context) error {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if s.bucketEnsured {
		return nil
	}

	backoff := 500 * time.Millisecond
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("minio not ready: %w", err)
		}

		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			time.Sleep(backoff)
			continue
		}

		if !exists {
			if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
				time.Sleep(backoff)
				continue
			}
			s.logger.Info().Str("bucket", s.bucket).Msg("Created new bucket")
		}

		s.bucketEnsured = true
		return nil
	}
}

func (s *MinIOStore) objectName(key string) string {
	return s.namespace + "/" + key + ".json"
}

func (s *MinIOStore) keyFromObject(name string) string {
	name = strings.TrimPrefix(name, s.namespace+"/")
	return strings.TrimSuffix(name, ".json")
}

func (s *MinIOStore) Save(ctx context.Context, run models.StoredRun) error {
	if err := validateRun(run); err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	info, err := s.client.PutObject(ctx, s.bucket, s.objectName(run.Key), bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload run: %w", err)
	}

	s.logger.Debug().
		Str("bucket", s.bucket).
		Str("object", s.objectName(run.Key)).
		Str("etag", info.ETag).
		Int("size", len(body)).
		Msg("Run uploaded to MinIO")

	return nil
}

func (s *MinIOStore) List(ctx context.Context, limit int) ([]models.StoredRun, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)

	var keys []string
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.namespace + "/",
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		if strings.HasSuffix(object.Key, ".json") {
			keys = append(keys, s.keyFromObject(object.Key))
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if len(keys) > limit {
		keys = keys[:limit]
	}

	runs := make([]models.StoredRun, 0, len(keys))
	for _, k := range keys {
		run, err := s.Get(ctx, k)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", k).Msg("Skipping unreadable run")
			continue
		}
		runs = append(runs, *run)
	}
	return runs, nil
}

func (s *MinIOStore) Get(ctx context.Context, key string) (*models.StoredRun, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}

	object, err := s.client.GetObject(ctx, s.bucket, s.objectName(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer object.Close()

	raw, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to read run: %w", err)
	}

	var run models.StoredRun
	if err := json.Unmarshal(raw, &run); err != nil {
		return nil, fmt.Errorf("failed to decode run: %w", err)
	}
	return &run, nil
}

func (s *MinIOStore) Driver() string { return "minio" }

func (s *MinIOStore) Close() error { return nil }
