package shared

import (
	"net/http"
	"strconv"
)

// Pagination carries the limit/offset pair parsed from list query strings.
type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit and offset from the query string, falling back
// to defaultLimit and clamping to maxLimit. Malformed or negative values keep
// the defaults.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	p := Pagination{Limit: defaultLimit}
	if v, ok := queryInt(r, "limit"); ok && v > 0 {
		p.Limit = v
	}
	if v, ok := queryInt(r, "offset"); ok && v >= 0 {
		p.Offset = v
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

func queryInt(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
