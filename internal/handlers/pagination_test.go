package handlers

import "testing"

func TestParsePaginationParamsDefaults(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != 1 || limit != 20 {
		t.Fatalf("expected defaults page=1 limit=20, got page=%d limit=%d", page, limit)
	}
}

func TestParsePaginationParamsRejectsInvalidValues(t *testing.T) {
	for _, tc := range [][2]string{{"0", "10"}, {"abc", "10"}, {"1", "0"}, {"1", "-5"}} {
		if _, _, err := parsePaginationParams(tc[0], tc[1]); err == nil {
			t.Fatalf("expected error for page=%q limit=%q", tc[0], tc[1])
		}
	}
}

func TestTotalPagesRoundsUp(t *testing.T) {
	for _, tc := range []struct {
		total, limit, want int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 7, 15},
	} {
		if got := totalPages(tc.total, tc.limit); got != tc.want {
			t.Fatalf("totalPages(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}
