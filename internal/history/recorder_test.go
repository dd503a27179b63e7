package history

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func TestRecorderKeepsInsertionOrder(t *testing.T) {
	r := NewRecorder()

	actions := []string{"processing", "processing", "complete"}
	for i, a := range actions {
		r.Record(a, json.RawMessage(fmt.Sprintf(`{"n":%d}`, i)))
	}

	entries := r.List()
	if len(entries) != len(actions) {
		t.Fatalf("len = %d; want %d", len(entries), len(actions))
	}
	for i, e := range entries {
		if e.Action != actions[i] {
			t.Fatalf("entry %d action = %q; want %q", i, e.Action, actions[i])
		}
	}
}

func TestRecorderTimestampsNeverGoBackwards(t *testing.T) {
	r := NewRecorder()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := []time.Time{base, base.Add(-time.Second), base.Add(time.Second)}
	i := 0
	r.now = func() time.Time {
		ts := clock[i]
		i++
		return ts
	}

	r.Record("a", nil)
	r.Record("b", nil)
	r.Record("c", nil)

	entries := r.List()
	for j := 1; j < len(entries); j++ {
		if entries[j].Timestamp.Before(entries[j-1].Timestamp) {
			t.Fatalf("entry %d timestamp %v is before %v", j, entries[j].Timestamp, entries[j-1].Timestamp)
		}
	}
	if !entries[1].Timestamp.Equal(base) {
		t.Fatalf("expected clamped timestamp %v, got %v", base, entries[1].Timestamp)
	}
}

func TestRecorderEntriesAreNotShared(t *testing.T) {
	r := NewRecorder()

	details := json.RawMessage(`{"status":"processing"}`)
	r.Record("processing", details)
	details[2] = 'X'

	list := r.List()
	list[0].Action = "mutated"

	got := r.List()[0]
	if got.Action != "processing" {
		t.Fatalf("stored entry was mutated through List: %q", got.Action)
	}
	if string(got.Details) != `{"status":"processing"}` {
		t.Fatalf("stored details were mutated through caller slice: %s", got.Details)
	}
}

func TestRecorderClear(t *testing.T) {
	r := NewRecorder()
	r.Record("processing", nil)
	r.Clear()

	if r.Len() != 0 {
		t.Fatalf("Len after Clear = %d; want 0", r.Len())
	}
}
