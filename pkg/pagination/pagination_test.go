package pagination

import "testing"

func TestNormalizePageSize(t *testing.T) {
	if got := NormalizePageSize(0); got != DefaultPageSize {
		t.Fatalf("expected default size, got %d", got)
	}
	if got := NormalizePageSize(500); got != MaxPageSize {
		t.Fatalf("expected max size, got %d", got)
	}
	if got := NormalizePageSize(24); got != 24 {
		t.Fatalf("expected passthrough, got %d", got)
	}
}

func TestTotalPages(t *testing.T) {
	if got := TotalPages(0, 12); got != 1 {
		t.Fatalf("empty sets still render one page, got %d", got)
	}
	if got := TotalPages(12, 12); got != 1 {
		t.Fatalf("expected 1 page, got %d", got)
	}
	if got := TotalPages(13, 12); got != 2 {
		t.Fatalf("expected 2 pages, got %d", got)
	}
}

func TestSliceClampsToLastPage(t *testing.T) {
	start, end := Slice(25, 99, 12)
	if start != 24 || end != 25 {
		t.Fatalf("expected final partial page [24,25), got [%d,%d)", start, end)
	}

	start, end = Slice(25, 0, 12)
	if start != 0 || end != 12 {
		t.Fatalf("expected first page for page<1, got [%d,%d)", start, end)
	}
}
