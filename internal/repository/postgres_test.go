package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/rs/zerolog"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db, "plagiarism_results", zerolog.Nop()), mock
}

func TestPostgresSaveWithoutFilesWritesEmptyArray(t *testing.T) {
	s, mock := newMockStore(t)
	key := models.RunKey(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO plagiarism_runs (namespace, key,")).
		WithArgs("plagiarism_results", key, nil, "sess-7", "{}", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	run := models.StoredRun{Key: key, SessionID: "sess-7", Results: []models.PlagiarismResult{{File1: "a.py"}}}
	if err := s.Save(context.Background(), run); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresListScopedToNamespace(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"key", "run_id", "session_id", "files", "results"}).
		AddRow("2024-03-01T10:00:00.000Z", "", "sess-1", "{a.zip,b.zip}", []byte(`[{"file1":"a.py"}]`))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE namespace = $1")).
		WithArgs("plagiarism_results", DefaultListLimit).
		WillReturnRows(rows)

	runs, err := s.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 || len(runs[0].Files) != 2 || runs[0].Files[1] != "b.zip" || runs[0].Results[0].File1 != "a.py" {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].Timestamp != runs[0].Key {
		t.Fatalf("timestamp = %q; want key", runs[0].Timestamp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresGetMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE namespace = $1 AND key = $2")).
		WithArgs("plagiarism_results", "nope").
		WillReturnRows(sqlmock.NewRows([]string{"key", "run_id", "session_id", "files", "results"}))

	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("error = %v; want ErrRunNotFound", err)
	}
}
