package actions

import (
	"math"

	"github.com/phillip/evently-go/store"
)

const (
	defaultAllEventsLimit = 6
	defaultPageLimit      = 3
	maxPageLimit          = 100
)

// Envelope is one page of results plus the number of pages available.
type Envelope[T any] struct {
	Data       []T `json:"data"`
	TotalPages int `json:"totalPages"`
}

// TotalPages is ceil(count/limit).
func TotalPages(count int64, limit int) int {
	if limit <= 0 || count <= 0 {
		return 0
	}
	l := int64(limit)
	return int((count + l - 1) / l)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}

// pageWindow converts a 1-based page number into a skip/limit window.
// Pages below 1 are treated as the first page. A skip too large for int64
// is clamped, which still lands past the last document.
func pageWindow(page, limit int) store.Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	skip := int64(math.MaxInt64)
	if int64(page-1) <= math.MaxInt64/int64(limit) {
		skip = int64(page-1) * int64(limit)
	}
	return store.Page{Skip: skip, Limit: int64(limit)}
}
