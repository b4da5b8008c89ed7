package shared

import (
	"net/http/httptest"
	"testing"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 50, 0},
		{"explicit", "limit=25&offset=75", 25, 75},
		{"clamped to max", "limit=999", 200, 0},
		{"malformed keeps defaults", "limit=abc&offset=-3", 50, 0},
		{"zero limit keeps default", "limit=0", 50, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/v1/admin/audit?"+tc.query, nil)
			p := ParsePagination(r, 50, 200)
			if p.Limit != tc.wantLimit || p.Offset != tc.wantOffset {
				t.Fatalf("got limit=%d offset=%d, want limit=%d offset=%d",
					p.Limit, p.Offset, tc.wantLimit, tc.wantOffset)
			}
		})
	}
}
