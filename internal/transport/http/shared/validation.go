package shared

import (
	"net/http"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"depuente/internal/domain/absence"
	"depuente/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{issues: make([]ValidationIssue, 0, 4)}
}

func (v *Validator) Add(field, reason string) {
	if v == nil {
		return
	}
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{
		Field:  field,
		Reason: reason,
	})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

func (v *Validator) Enum(field, value string, allowed []string, reason string) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return
	}
	for _, candidate := range allowed {
		if normalized == strings.ToLower(strings.TrimSpace(candidate)) {
			return
		}
	}
	v.Add(field, reason)
}

func (v *Validator) Date(field, raw string) (absence.Date, bool) {
	parsed, err := ParseDate(raw)
	if err != nil || parsed.IsZero() {
		v.Add(field, "must be a valid date in YYYY-MM-DD format")
		return absence.Date{}, false
	}
	return parsed, true
}

func (v *Validator) DateOrder(startField string, start absence.Date, endField string, end absence.Date) {
	if start.IsZero() || end.IsZero() {
		return
	}
	if end.Before(start) {
		v.Add(startField, "must be on or before "+endField)
		v.Add(endField, "must be on or after "+startField)
	}
}

// DateRangeCap rejects windows longer than the service-wide 365-day limit.
// The cap is what keeps the day-by-day business-day walk bounded.
func (v *Validator) DateRangeCap(startField string, start absence.Date, endField string, end absence.Date) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return
	}
	if start.Shift(absence.RangeCapDays).Before(end) {
		v.Add(endField, "range cannot exceed 365 days")
	}
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Issues() []ValidationIssue {
	if v == nil || len(v.issues) == 0 {
		return nil
	}
	out := make([]ValidationIssue, len(v.issues))
	copy(out, v.issues)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// Sanitize strips HTML tags, trims whitespace, and caps the length. Used for
// free-text fields (notes, bug reports, names) before they hit storage. The
// cap cuts on a rune boundary so truncation never leaves invalid UTF-8, which
// Postgres would reject.
func Sanitize(input string, maxLength int) string {
	cleaned := strings.TrimSpace(htmlTagPattern.ReplaceAllString(input, ""))
	if maxLength > 0 && len(cleaned) > maxLength {
		cut := maxLength
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		cleaned = cleaned[:cut]
	}
	return cleaned
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}
