package logic

import (
	"github.com/scamwatch/scamwatch/internal/logic/filters"
	"github.com/scamwatch/scamwatch/internal/logic/sorting"
	"github.com/scamwatch/scamwatch/internal/models"
)

// Query captures every user-selected control that shapes the visible page.
type Query struct {
	Criteria      filters.Criteria
	SortField     string
	SortAscending bool
	PageSize      int
	Page          int
}

// DefaultQuery mirrors the dashboard's initial control state: everything
// visible, newest scraped records first.
func DefaultQuery() Query {
	return Query{
		SortField:     sorting.FieldDateScraped,
		SortAscending: false,
		PageSize:      DefaultPageSize,
		Page:          1,
	}
}

// View is the result of one pipeline run: the exact page of records shown to
// the user plus the bookkeeping needed for pagination controls and the
// overview metrics computed over the filtered set.
type View struct {
	Records      []models.Record `json:"records"`
	Page         int             `json:"page"`
	PageSize     int             `json:"page_size"`
	TotalPages   int             `json:"total_pages"`
	TotalRecords int             `json:"total_records"`
	Stats        Summary         `json:"stats"`
}

// SortedSubset applies the query's filter and sort stages without pagination,
// for CSV export and charting over the full visible set.
func SortedSubset(records []models.Record, q Query) []models.Record {
	return sorting.Sort(filters.Apply(records, q.Criteria), q.SortField, q.SortAscending)
}

// Run executes filter -> sort -> paginate over the given collection.
// The page is clamped to 1 whenever the filtered result no longer covers the
// requested page.
func Run(records []models.Record, q Query) View {
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}

	filtered := filters.Apply(records, q.Criteria)
	sorted := sorting.Sort(filtered, q.SortField, q.SortAscending)

	totalPages := TotalPages(len(sorted), q.PageSize)
	page := ClampPage(q.Page, totalPages)

	return View{
		Records:      Paginate(sorted, q.PageSize, page),
		Page:         page,
		PageSize:     q.PageSize,
		TotalPages:   totalPages,
		TotalRecords: len(sorted),
		Stats:        Summarize(filtered),
	}
}
