package shared

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"depuente/internal/domain/absence"
)

func TestValidatorDateAndOrder(t *testing.T) {
	v := NewValidator()
	start, ok := v.Date("startDate", "2025-06-02")
	if !ok {
		t.Fatal("valid date rejected")
	}
	end, ok := v.Date("endDate", "2025-06-01")
	if !ok {
		t.Fatal("valid date rejected")
	}

	v.DateOrder("startDate", start, "endDate", end)
	if !v.HasIssues() {
		t.Fatal("end before start should be an issue")
	}

	issues := v.Issues()
	if len(issues) != 2 {
		t.Fatalf("expected one issue per field, got %d", len(issues))
	}
}

func TestValidatorRejectsMalformedDate(t *testing.T) {
	v := NewValidator()
	if _, ok := v.Date("from", "junio 2"); ok {
		t.Fatal("malformed date accepted")
	}
	if !v.HasIssues() {
		t.Fatal("expected an issue for malformed date")
	}
}

func TestDateRangeCap(t *testing.T) {
	start := absence.NewDate(2025, time.January, 1)

	v := NewValidator()
	v.DateRangeCap("startDate", start, "endDate", start.Shift(absence.RangeCapDays))
	if v.HasIssues() {
		t.Fatalf("exactly 365 days out should pass: %+v", v.Issues())
	}

	v = NewValidator()
	v.DateRangeCap("startDate", start, "endDate", start.Shift(absence.RangeCapDays+1))
	if !v.HasIssues() {
		t.Fatal("beyond the cap should fail")
	}
}

func TestValidatorEnum(t *testing.T) {
	v := NewValidator()
	v.Enum("type", "VACACIONES", absence.KnownTypes(), "unknown absence type")
	if v.HasIssues() {
		t.Fatalf("enum match should be case insensitive: %+v", v.Issues())
	}

	v = NewValidator()
	v.Enum("type", "sabbatical", absence.KnownTypes(), "unknown absence type")
	if !v.HasIssues() {
		t.Fatal("unknown value should fail the enum check")
	}
}

func TestSanitize(t *testing.T) {
	got := Sanitize("  <script>alert(1)</script>hola <b>mundo</b>  ", 0)
	if got != "alert(1)hola mundo" {
		t.Fatalf("unexpected sanitize output: %q", got)
	}

	if got := Sanitize("abcdef", 3); got != "abc" {
		t.Fatalf("length cap failed: %q", got)
	}
}

func TestSanitizeCapKeepsValidUTF8(t *testing.T) {
	// 300 copies of a 2-byte rune; an odd byte cap lands mid-rune.
	input := strings.Repeat("á", 300)
	got := Sanitize(input, 501)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated output is not valid UTF-8: % x", got[len(got)-4:])
	}
	if len(got) != 500 {
		t.Fatalf("expected cut back to the previous rune boundary, got %d bytes", len(got))
	}
	if got := Sanitize("día", 3); got != "dí" || !utf8.ValidString(got) {
		t.Fatalf("cap inside trailing rune produced %q", got)
	}
	if got := Sanitize("día libre", 20); got != "día libre" {
		t.Fatalf("input under the cap should pass through, got %q", got)
	}
}

func TestValidEmail(t *testing.T) {
	if !ValidEmail("ana@example.com") {
		t.Fatal("valid email rejected")
	}
	for _, bad := range []string{"", "ana", "ana@", "@example.com", "a b@example.com"} {
		if ValidEmail(bad) {
			t.Fatalf("invalid email accepted: %q", bad)
		}
	}
}

func TestParseDateTruncatesTimestamp(t *testing.T) {
	date, err := ParseDate("2025-06-02T10:30:00Z")
	if err != nil {
		t.Fatalf("timestamp input should be truncated to its date part: %v", err)
	}
	if date.String() != "2025-06-02" {
		t.Fatalf("unexpected date: %s", date)
	}
}
