package models

import (
	"encoding/json"
	"time"
)

// HistoryEntry не изменяется после создания.
type HistoryEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details"`
}

// StoredRun - запись во внешнем хранилище результатов.
type StoredRun struct {
	Key       string             `json:"key"`
	RunID     string             `json:"run_id,omitempty"`
	SessionID string             `json:"session_id,omitempty"`
	Timestamp string             `json:"timestamp"`
	Files     []string           `json:"files"`
	Results   []PlagiarismResult `json:"results"`
}

// RunKeyLayout - ISO-8601 в UTC с миллисекундами, ключи сортируются лексикографически.
const RunKeyLayout = "2006-01-02T15:04:05.000Z"

func RunKey(t time.Time) string {
	return t.UTC().Format(RunKeyLayout)
}
