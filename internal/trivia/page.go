package trivia

// PageSize is the number of questions on a page.
const PageSize = 10

// Paginate returns the 1-based page of items with the given size.
// The second return value is false when the page window lies entirely beyond items.
// Page 1 always exists, even for an empty slice.
func Paginate[T any](items []T, page, size int) ([]T, bool) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = PageSize
	}

	// Compare page numbers rather than offsets so huge pages can't overflow.
	if page > PageCount(len(items), size) {
		return items[:0], page == 1
	}

	start := (page - 1) * size
	end := min(start+size, len(items))

	return items[start:end], true
}

// PageCount returns the number of pages with content.
func PageCount(total, size int) int {
	if total <= 0 {
		return 0
	}

	return (total + size - 1) / size
}
