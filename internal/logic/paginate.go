// Package logic composes the dashboard pipeline: filter, sort, paginate and
// summarize over the in-memory master collection. Every stage is a pure
// recomputation; no stage mutates its input.
package logic

import "github.com/scamwatch/scamwatch/internal/models"

// DefaultPageSize matches the dashboard's default rows-per-page selection.
const DefaultPageSize = 20

// PageSizeOptions are the rows-per-page choices surfaced to the user.
var PageSizeOptions = []int{10, 20, 50, 100}

// ValidPageSize reports whether size is one of the supported options.
func ValidPageSize(size int) bool {
	for _, opt := range PageSizeOptions {
		if size == opt {
			return true
		}
	}
	return false
}

// TotalPages returns ceil(total/pageSize). Zero records means zero pages.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage applies the documented recovery policy: any page outside
// [1, totalPages] resets to page 1, not to the last page.
func ClampPage(page, totalPages int) int {
	if page < 1 || page > totalPages {
		return 1
	}
	return page
}

// Paginate returns the 1-based page slice of records. An out-of-range page
// yields an empty slice; callers are expected to ClampPage before rendering.
func Paginate(records []models.Record, pageSize, page int) []models.Record {
	if pageSize <= 0 || page < 1 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(records) {
		return nil
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	out := make([]models.Record, end-start)
	copy(out, records[start:end])
	return out
}
