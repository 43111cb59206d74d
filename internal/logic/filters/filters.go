// Package filters implements the predicate stage of the dashboard pipeline.
// Each predicate is independent; Apply conjoins the active ones and preserves
// the input order of surviving records.
package filters

import (
	"strings"
	"time"

	"github.com/scamwatch/scamwatch/internal/models"
)

// Classification selects records by their scam flag.
type Classification string

const (
	ClassificationAll   Classification = "ALL"
	ClassificationScam  Classification = "SCAM_ONLY"
	ClassificationLegit Classification = "LEGIT_ONLY"
)

// ParseClassification maps a user-supplied token to a Classification.
// Unknown tokens degrade to ClassificationAll.
func ParseClassification(s string) Classification {
	switch Classification(strings.ToUpper(strings.TrimSpace(s))) {
	case ClassificationScam:
		return ClassificationScam
	case ClassificationLegit:
		return ClassificationLegit
	default:
		return ClassificationAll
	}
}

// DateRange bounds the scraped date of matching records. Boundaries are
// interpreted at day granularity: the range covers startOfDay(Start) through
// endOfDay(End) inclusive, in UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Criteria holds the full set of filter controls. The zero value passes
// every record.
type Criteria struct {
	Classification   Classification
	ThreatCategories map[models.ThreatCategory]bool
	DateRange        *DateRange
	// IncludeUndated keeps records with no scraped date when a date range
	// is active.
	IncludeUndated bool
}

// Apply returns the records matching every active criterion, in input order.
// Filtering is a pure function of (records, criteria).
func Apply(records []models.Record, c Criteria) []models.Record {
	lower, upper, dateActive := c.dateBounds()

	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if !matchesClassification(r, c.Classification) {
			continue
		}
		if !matchesThreat(r, c.ThreatCategories) {
			continue
		}
		if dateActive && !matchesDate(r, lower, upper, c.IncludeUndated) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// dateBounds normalizes the range so the earlier boundary is always the
// start, even when the user supplied them reversed.
func (c Criteria) dateBounds() (time.Time, time.Time, bool) {
	if c.DateRange == nil {
		return time.Time{}, time.Time{}, false
	}
	start, end := c.DateRange.Start, c.DateRange.End
	if end.Before(start) {
		start, end = end, start
	}
	return startOfDay(start.UTC()), endOfDay(end.UTC()), true
}

func matchesClassification(r models.Record, cls Classification) bool {
	switch cls {
	case ClassificationScam:
		return r.IsScam
	case ClassificationLegit:
		return !r.IsScam
	default:
		return true
	}
}

// matchesThreat treats an empty category set as "no filtering", mirroring
// the default-to-all-options control behavior.
func matchesThreat(r models.Record, categories map[models.ThreatCategory]bool) bool {
	if len(categories) == 0 {
		return true
	}
	return categories[r.ThreatCategory]
}

func matchesDate(r models.Record, lower, upper time.Time, includeUndated bool) bool {
	if r.DateScraped == nil {
		return includeUndated
	}
	ts := r.DateScraped.UTC()
	return !ts.Before(lower) && !ts.After(upper)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}
