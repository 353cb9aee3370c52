package util

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"rfc3339", "2025-03-10T12:00:00Z", true},
		{"rfc3339 with offset", "2025-03-10T22:30:00+03:00", true},
		{"no offset", "2025-03-10T12:00:00", true},
		{"date only", "2025-03-10", true},
		{"empty", "", false},
		{"garbage", "next tuesday", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseTimestamp(tt.input)
			if ok != tt.ok {
				t.Errorf("ParseTimestamp(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
		})
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2025, 3, 10, 22, 45, 30, 123, loc)
	got := StartOfDay(in)

	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Errorf("expected midnight, got %v", got)
	}
	if got.Location() != loc {
		t.Errorf("expected location preserved, got %v", got.Location())
	}
	if DayString(got) != "2025-03-10" {
		t.Errorf("expected same calendar day, got %s", DayString(got))
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		sec  int64
		want string
	}{
		{0, "0s"},
		{59, "59s"},
		{60, "1m00s"},
		{3599, "59m59s"},
		{3600, "1h00m00s"},
		{3723, "1h02m03s"},
		{-5, "0s"},
	}
	for _, tt := range tests {
		if got := FormatSeconds(tt.sec); got != tt.want {
			t.Errorf("FormatSeconds(%d) = %q, want %q", tt.sec, got, tt.want)
		}
	}
}
