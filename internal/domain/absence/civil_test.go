package absence

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2025-06-02")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if date.Year() != 2025 || date.Month() != time.June || date.Day() != 2 {
		t.Fatalf("unexpected date: %s", date)
	}

	if _, err := ParseDate("02/06/2025"); err == nil {
		t.Fatal("expected error for non ISO input")
	}
	if _, err := ParseDate("2025-13-40"); err == nil {
		t.Fatal("expected error for impossible date")
	}
}

func TestDateOfNormalizesAcrossTimezones(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 00:30 local on June 3rd is still June 2nd in UTC. DateOf must keep
	// the local calendar day.
	local := time.Date(2025, time.June, 3, 0, 30, 0, 0, madrid)
	date := DateOf(local)
	if date.String() != "2025-06-03" {
		t.Fatalf("expected local calendar day 2025-06-03, got %s", date)
	}
	if !date.Equal(NewDate(2025, time.June, 3)) {
		t.Fatalf("DateOf and NewDate disagree: %s", date)
	}
}

func TestCountBusinessDays(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"monday to friday", "2025-06-02", "2025-06-06", 5},
		{"saturday and sunday only", "2025-06-07", "2025-06-08", 0},
		{"single weekday", "2025-06-04", "2025-06-04", 1},
		{"single saturday", "2025-06-07", "2025-06-07", 0},
		{"spanning a weekend", "2025-06-06", "2025-06-09", 2},
		{"two full weeks", "2025-06-02", "2025-06-13", 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, err := ParseDate(tc.start)
			if err != nil {
				t.Fatalf("parse start: %v", err)
			}
			end, err := ParseDate(tc.end)
			if err != nil {
				t.Fatalf("parse end: %v", err)
			}
			if got := CountBusinessDays(start, end); got != tc.want {
				t.Fatalf("CountBusinessDays(%s, %s) = %d, want %d", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestCountBusinessDaysInvertedRange(t *testing.T) {
	start := NewDate(2025, time.June, 6)
	end := NewDate(2025, time.June, 2)
	if got := CountBusinessDays(start, end); got != 0 {
		t.Fatalf("inverted range should count 0, got %d", got)
	}
}

func TestShiftAndExclusiveEnd(t *testing.T) {
	date := NewDate(2025, time.June, 30)
	if got := date.Shift(1).String(); got != "2025-07-01" {
		t.Fatalf("shift across month boundary: %s", got)
	}
	if got := date.Shift(-30).String(); got != "2025-05-31" {
		t.Fatalf("negative shift: %s", got)
	}
	if got := date.ExclusiveEnd(); !got.Equal(date.Shift(1)) {
		t.Fatalf("ExclusiveEnd should be the next day, got %s", got)
	}
}

func TestWithin(t *testing.T) {
	start := NewDate(2025, time.June, 2)
	end := NewDate(2025, time.June, 6)

	if !start.Within(start, end) || !end.Within(start, end) {
		t.Fatal("range bounds are inclusive")
	}
	if !NewDate(2025, time.June, 4).Within(start, end) {
		t.Fatal("interior day should be within")
	}
	if NewDate(2025, time.June, 7).Within(start, end) {
		t.Fatal("day after end should not be within")
	}
	if NewDate(2025, time.June, 1).Within(start, end) {
		t.Fatal("day before start should not be within")
	}
}

func TestMonthKey(t *testing.T) {
	if got := NewDate(2025, time.January, 9).MonthKey(); got != "2025-01" {
		t.Fatalf("expected zero padded month key, got %s", got)
	}
	if got := NewDate(2025, time.December, 31).MonthKey(); got != "2025-12" {
		t.Fatalf("expected 2025-12, got %s", got)
	}
}

func TestDateJSONFormat(t *testing.T) {
	date := NewDate(2025, time.June, 2)
	encoded, err := date.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(encoded) != `"2025-06-02"` {
		t.Fatalf("unexpected JSON encoding: %s", encoded)
	}

	var decoded Date
	if err := decoded.UnmarshalJSON([]byte(`"2025-06-02"`)); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if !decoded.Equal(date) {
		t.Fatalf("round trip mismatch: %s", decoded)
	}
}
