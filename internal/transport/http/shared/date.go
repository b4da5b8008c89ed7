package shared

import (
	"strings"

	"depuente/internal/domain/absence"
)

// ParseDate accepts a YYYY-MM-DD string, tolerating an RFC3339 timestamp by
// taking only its date part.
func ParseDate(value string) (absence.Date, error) {
	value = strings.TrimSpace(value)
	if len(value) > 10 {
		value = value[:10]
	}
	return absence.ParseDate(value)
}
