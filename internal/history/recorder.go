package history

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
)

// Recorder - журнал событий сессии только на добавление.
// Порядок вставки является порядком отображения.
type Recorder struct {
	mu      sync.RWMutex
	entries []models.HistoryEntry
	now     func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Record добавляет запись; details - исходный кадр.
func (r *Recorder) Record(action string, details json.RawMessage) models.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now()
	if n := len(r.entries); n > 0 && ts.Before(r.entries[n-1].Timestamp) {
		ts = r.entries[n-1].Timestamp
	}

	entry := models.HistoryEntry{
		Timestamp: ts,
		Action:    action,
		Details:   append(json.RawMessage(nil), details...),
	}
	r.entries = append(r.entries, entry)

	return entry
}

func (r *Recorder) List() []models.HistoryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.HistoryEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear вызывается только при старте нового запуска.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
