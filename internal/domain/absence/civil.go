package absence

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day and no timezone. Internally it
// is a time.Time pinned to UTC midnight, so two dates that print the same
// YYYY-MM-DD compare equal no matter what location the source value carried.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(value string) (Date, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return Date{}, err
	}
	return DateOf(parsed), nil
}

func (d Date) Year() int            { return d.t.Year() }
func (d Date) Month() time.Month    { return d.t.Month() }
func (d Date) Day() int             { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

func (d Date) IsZero() bool        { return d.t.IsZero() }
func (d Date) Equal(o Date) bool   { return d.t.Equal(o.t) }
func (d Date) Before(o Date) bool  { return d.t.Before(o.t) }
func (d Date) After(o Date) bool   { return d.t.After(o.t) }

func (d Date) String() string {
	return d.t.Format(dateLayout)
}

// Shift returns the date offset by days, which may be negative.
func (d Date) Shift(days int) Date {
	return Date{t: d.t.AddDate(0, 0, days)}
}

// ExclusiveEnd returns the day after d. Calendar widgets treat an event's end
// date as exclusive, so an absence ending on d renders with end d+1.
func (d Date) ExclusiveEnd() Date {
	return d.Shift(1)
}

// Within reports whether d falls inside [start, end], both inclusive.
func (d Date) Within(start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

// MonthKey returns a stable year-scoped aggregation key, e.g. "2025-06".
// Keeping the year in the key prevents months from different years merging
// when a caller ever passes a multi-year window.
func (d Date) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month()))
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" || raw == `""` {
		*d = Date{}
		return nil
	}
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return fmt.Errorf("invalid date %s", raw)
	}
	parsed, err := ParseDate(raw[1 : len(raw)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// CountBusinessDays counts Monday-Friday days in the inclusive range
// [start, end]. Callers validate ordering first; an inverted range yields 0.
// Ranges are capped at 365 days by input validation, so the day-by-day walk
// is fine.
func CountBusinessDays(start, end Date) int {
	count := 0
	for current := start; !current.After(end); current = current.Shift(1) {
		weekday := current.Weekday()
		if weekday != time.Saturday && weekday != time.Sunday {
			count++
		}
	}
	return count
}
