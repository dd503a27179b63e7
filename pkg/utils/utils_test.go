package utils

import (
	"net/http/httptest"
	"testing"
)

func TestParseIndex(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"12", 12, false},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := ParseIndex(c.in)
		if (err != nil) != c.wantErr || got != c.want {
			t.Fatalf("ParseIndex(%q) = %d, %v", c.in, got, err)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"student_submission.cpp", 8, "student…"},
		{"привет мир", 4, "при…"},
		{"x", 0, ""},
	}
	for _, c := range cases {
		if got := Truncate(c.in, c.max); got != c.want {
			t.Fatalf("Truncate(%q, %d) = %q; want %q", c.in, c.max, got, c.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(81.234); got != "81.23%" {
		t.Fatalf("FormatPercent = %q", got)
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteJSON(rec, 201, map[string]string{"a": "b"}); err != nil {
		t.Fatal(err)
	}
	if rec.Code != 201 || rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("code=%d headers=%v", rec.Code, rec.Header())
	}
	if rec.Body.String() != "{\"a\":\"b\"}\n" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestValidateUUID(t *testing.T) {
	if !ValidateUUID(GenerateUUID()) {
		t.Fatalf("generated uuid rejected")
	}
	if ValidateUUID("not-a-uuid") {
		t.Fatalf("invalid uuid accepted")
	}
}
