package utils

import "math"

// MaxOffset is the deepest row offset a page request may reach.
const MaxOffset = math.MaxInt32

func CalculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

func CalculateOffset(page, perPage int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * perPage
}

// PageInRange reports whether page starts at or below MaxOffset.
func PageInRange(page, perPage int) bool {
	if page < 1 || perPage <= 0 {
		return false
	}
	return page-1 <= MaxOffset/perPage
}

// HasMore reports whether rows exist past the current page.
func HasMore(page, perPage int, total int64) bool {
	if page < 1 {
		page = 1
	}
	return int64(page) < int64(CalculateTotalPages(total, perPage))
}
