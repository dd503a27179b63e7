package severity

import (
	"encoding/json"
	"math"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		score float64
		want  Level
	}{
		{"negative", -10, Low},
		{"zero", 0, Low},
		{"just below medium", 49.999, Low},
		{"medium boundary", 50, Medium},
		{"inside medium", 60, Medium},
		{"just below high", 74.99, Medium},
		{"high boundary", 75, High},
		{"full", 100, High},
		{"out of range", 250, High},
		{"nan", math.NaN(), Low},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Classify(c.score); got != c.want {
				t.Fatalf("Classify(%v) = %s; want %s", c.score, got, c.want)
			}
		})
	}
}

func TestClassifyIsMonotonic(t *testing.T) {
	prev := Classify(-50)
	for s := -50.0; s <= 150; s += 0.25 {
		cur := Classify(s)
		if cur < prev {
			t.Fatalf("Classify is not monotonic at %v: %s after %s", s, cur, prev)
		}
		prev = cur
	}
}

func TestFromFraction(t *testing.T) {
	if got := FromFraction(0.75); got != High {
		t.Fatalf("FromFraction(0.75) = %s; want high", got)
	}
	if got := FromFraction(0.5); got != Medium {
		t.Fatalf("FromFraction(0.5) = %s; want medium", got)
	}
	if got := FromFraction(0.1); got != Low {
		t.Fatalf("FromFraction(0.1) = %s; want low", got)
	}
}

func TestLevelJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Level{"s": Medium})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"s":"medium"}` {
		t.Fatalf("unexpected json %s", b)
	}

	var l Level
	if err := json.Unmarshal([]byte(`"bogus"`), &l); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
