package severity

import (
	"encoding/json"
	"fmt"
)

// Level - категория серьезности совпадения.
type Level int

const (
	Low Level = iota
	Medium
	High
)

const (
	HighThreshold   = 75.0
	MediumThreshold = 50.0
)

// Classify принимает оценку в шкале 0..100.
// Любое число допустимо, вне диапазона классифицируется теми же неравенствами.
func Classify(score float64) Level {
	switch {
	case score >= HighThreshold:
		return High
	case score >= MediumThreshold:
		return Medium
	default:
		return Low
	}
}

// FromFraction для оценок в шкале 0..1 (similarity).
func FromFraction(fraction float64) Level {
	return Classify(fraction * 100)
}

func (l Level) String() string {
	switch l {
	case High:
		return "high"
	case Medium:
		return "medium"
	default:
		return "low"
	}
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}

	*l = parsed
	return nil
}

func Parse(s string) (Level, error) {
	switch s {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	default:
		return Low, fmt.Errorf("unknown severity level %q", s)
	}
}
