package pagination

const (
	// DefaultPageSize is the catalog page size when a store has no override.
	DefaultPageSize = 12
	// MaxPageSize caps how many products any single page can request.
	MaxPageSize = 100
)

// NormalizePageSize enforces the configured default and maximum page sizes.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// NormalizePage clamps a raw page number to 1-based indexing.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// TotalPages derives the page count for a result set; an empty set still
// renders one (empty) page.
func TotalPages(total, pageSize int) int {
	pageSize = NormalizePageSize(pageSize)
	if total <= 0 {
		return 1
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}

// Slice returns the bounds of the requested page within a result set of the
// given length, clamping the page to the last available one.
func Slice(total, page, pageSize int) (start, end int) {
	pageSize = NormalizePageSize(pageSize)
	page = NormalizePage(page)
	if last := TotalPages(total, pageSize); page > last {
		page = last
	}
	start = (page - 1) * pageSize
	if start > total {
		start = total
	}
	end = start + pageSize
	if end > total {
		end = total
	}
	return start, end
}
