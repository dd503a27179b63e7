package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// PostgresStore пишет запуски в таблицу plagiarism_runs.
// Ключ уникален в пределах namespace, как префикс ключей в redis и minio.
type PostgresStore struct {
	db        *sql.DB
	namespace string
	logger    zerolog.Logger
}

func NewPostgresStore(db *sql.DB, namespace string, logger zerolog.Logger) *PostgresStore {
	return &PostgresStore{db: db, namespace: namespace, logger: logger}
}

func (s *PostgresStore) Save(ctx context.Context, run models.StoredRun) error {
	if err := validateRun(run); err != nil {
		return err
	}

	results, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	var runID any
	if id, err := uuid.Parse(run.RunID); err == nil {
		runID = id.String()
	}

	// files NOT NULL, а pq.Array(nil) пишет NULL
	files := run.Files
	if files == nil {
		files = []string{}
	}

	createdAt := time.Now().UTC()
	if ts, err := time.Parse(models.RunKeyLayout, run.Key); err == nil {
		createdAt = ts
	}

	query := `
		INSERT INTO plagiarism_runs (namespace, key, run_id, session_id, files, results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (namespace, key) DO UPDATE
		SET run_id = EXCLUDED.run_id,
		    session_id = EXCLUDED.session_id,
		    files = EXCLUDED.files,
		    results = EXCLUDED.results`

	_, err = s.db.ExecContext(ctx, query,
		s.namespace, run.Key, runID, run.SessionID, pq.Array(files), results, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	s.logger.Debug().Str("key", run.Key).Int("results", len(run.Results)).Msg("Run saved to PostgreSQL")
	return nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]models.StoredRun, error) {
	query := `
		SELECT key, COALESCE(run_id::text, ''), session_id, files, results
		FROM plagiarism_runs
		WHERE namespace = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, s.namespace, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.StoredRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (*models.StoredRun, error) {
	query := `
		SELECT key, COALESCE(run_id::text, ''), session_id, files, results
		FROM plagiarism_runs
		WHERE namespace = $1 AND key = $2`

	run, err := scanRun(s.db.QueryRowContext(ctx, query, s.namespace, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.StoredRun, error) {
	var (
		run     models.StoredRun
		files   pq.StringArray
		results []byte
	)
	if err := row.Scan(&run.Key, &run.RunID, &run.SessionID, &files, &results); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	if err := json.Unmarshal(results, &run.Results); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	run.Files = []string(files)
	run.Timestamp = run.Key
	return &run, nil
}

func (s *PostgresStore) Driver() string { return "postgres" }

func (s *PostgresStore) Close() error { return s.db.Close() }
