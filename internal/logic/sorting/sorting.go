// Package sorting orders record collections by a chosen field. Sorts are
// stable: records with equal keys keep their relative input order, so
// repeated re-sorts after a single record mutation never reshuffle ties.
package sorting

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/scamwatch/scamwatch/internal/models"
)

// Field names accepted by Sort, matching the upstream JSON field names.
const (
	FieldID            = "id"
	FieldPageName      = "page_name"
	FieldStatus        = "status"
	FieldScamType      = "scam_type"
	FieldThreatLevel   = "threat_level"
	FieldPageLikeCount = "page_like_count"
	FieldReportCount   = "report_count"
	FieldReported      = "reported"
	FieldDateScraped   = "date_scraped"
	FieldAdURL         = "ad_url"
)

// numericRatioThreshold is the fraction of a column that must parse as
// numeric before numeric ordering is used instead of lexical.
const numericRatioThreshold = 0.8

// statusRank orders the classification display field: SCAM before LEGIT.
var statusRank = map[string]float64{"SCAM": 0, "LEGIT": 1}

// threatRank orders threat categories from most to least severe.
var threatRank = map[models.ThreatCategory]float64{
	models.ThreatHigh:   0,
	models.ThreatMedium: 1,
	models.ThreatLow:    2,
	models.ThreatOther:  3,
}

const unmappedRank = 99

// Sort returns a stably sorted copy of records ordered by the given field.
// Unknown fields degrade to a pass-through copy rather than an error.
func Sort(records []models.Record, field string, ascending bool) []models.Record {
	out := make([]models.Record, len(records))
	copy(out, records)

	keys, ok := buildKeys(out, field, ascending)
	if !ok {
		return out
	}

	type indexed struct {
		rec models.Record
		key sortKey
	}
	rows := make([]indexed, len(out))
	for i, r := range out {
		rows[i] = indexed{rec: r, key: keys[i]}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if ascending {
			return rows[i].key.less(rows[j].key)
		}
		return rows[j].key.less(rows[i].key)
	})

	for i, row := range rows {
		out[i] = row.rec
	}
	return out
}

// sortKey is a uniform comparable key: numeric, timestamp or lexical, never
// mixed within one column. Timestamps compare as int64 nanoseconds; a float64
// key would round away sub-microsecond differences.
type sortKey struct {
	numeric bool
	num     float64
	isTime  bool
	nanos   int64
	str     string
}

func (k sortKey) less(other sortKey) bool {
	if k.isTime {
		return k.nanos < other.nanos
	}
	if k.numeric {
		return k.num < other.num
	}
	return k.str < other.str
}

func buildKeys(records []models.Record, field string, ascending bool) ([]sortKey, bool) {
	keys := make([]sortKey, len(records))

	switch field {
	case FieldStatus:
		for i, r := range records {
			rank, ok := statusRank[r.Classification()]
			if !ok {
				rank = unmappedRank
			}
			keys[i] = sortKey{numeric: true, num: rank}
		}
		return keys, true

	case FieldReported:
		// Reported records rank before pending ones.
		for i, r := range records {
			rank := float64(1)
			if r.IsReported() {
				rank = 0
			}
			keys[i] = sortKey{numeric: true, num: rank}
		}
		return keys, true

	case FieldThreatLevel:
		for i, r := range records {
			rank, ok := threatRank[r.ThreatCategory]
			if !ok {
				rank = unmappedRank
			}
			keys[i] = sortKey{numeric: true, num: rank}
		}
		return keys, true
	}

	if strings.HasPrefix(strings.ToLower(field), "date") {
		// Missing dates always sort to the bottom in the chosen direction:
		// treated as the latest instant when ascending, earliest when
		// descending.
		missing := int64(math.MaxInt64)
		if !ascending {
			missing = math.MinInt64
		}
		for i, r := range records {
			nanos := missing
			if r.DateScraped != nil {
				nanos = r.DateScraped.UnixNano()
			}
			keys[i] = sortKey{isTime: true, nanos: nanos}
		}
		return keys, true
	}

	values, ok := columnValues(records, field)
	if !ok {
		return nil, false
	}

	// Try the whole column as numbers; when at least 80% parse, use numeric
	// ordering with unparsable values pinned to the bottom in both
	// directions. Otherwise fall back to case-sensitive lexical order.
	parsed := make([]float64, len(values))
	parseable := make([]bool, len(values))
	count := 0
	for i, v := range values {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			parsed[i] = f
			parseable[i] = true
			count++
		}
	}

	if len(values) > 0 && float64(count)/float64(len(values)) >= numericRatioThreshold {
		pin := math.Inf(1)
		if !ascending {
			pin = math.Inf(-1)
		}
		for i := range values {
			if parseable[i] {
				keys[i] = sortKey{numeric: true, num: parsed[i]}
			} else {
				keys[i] = sortKey{numeric: true, num: pin}
			}
		}
		return keys, true
	}

	for i, v := range values {
		keys[i] = sortKey{str: v}
	}
	return keys, true
}

// columnValues extracts the string representation of a field across the
// collection. Unknown fields report false so the sort degrades to a
// pass-through.
func columnValues(records []models.Record, field string) ([]string, bool) {
	get, ok := fieldGetter(field)
	if !ok {
		return nil, false
	}
	values := make([]string, len(records))
	for i, r := range records {
		values[i] = get(r)
	}
	return values, true
}

func fieldGetter(field string) (func(models.Record) string, bool) {
	switch field {
	case FieldID:
		return func(r models.Record) string { return r.ID }, true
	case FieldPageName:
		return func(r models.Record) string { return r.PageName }, true
	case FieldScamType:
		return func(r models.Record) string { return r.ScamType }, true
	case FieldAdURL:
		return func(r models.Record) string { return r.AdURL }, true
	case FieldPageLikeCount:
		return func(r models.Record) string { return strconv.Itoa(r.PageLikeCount) }, true
	case FieldReportCount:
		return func(r models.Record) string { return strconv.Itoa(r.ReportCount) }, true
	default:
		return nil, false
	}
}
