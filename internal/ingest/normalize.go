// Package ingest coerces raw upstream record maps into canonical typed
// records. Normalization never fails: every field degrades to its documented
// default, so a partially broken upstream payload still yields a usable
// collection.
package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/scamwatch/scamwatch/internal/models"
)

// dateLayouts are tried in order when parsing scraped timestamps. Upstream
// has shipped all of these at one point or another.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts a batch of raw upstream maps into canonical records.
// It is a pure function of its input and is idempotent over already-canonical
// batches. Records are never dropped; fields that cannot be coerced take
// their defaults.
func Normalize(raw []map[string]any) []models.Record {
	out := make([]models.Record, 0, len(raw))
	for _, m := range raw {
		out = append(out, normalizeOne(m))
	}
	return out
}

func normalizeOne(m map[string]any) models.Record {
	r := models.Record{
		ID:                    coerceID(m["id"]),
		PageName:              coerceString(m["page_name"]),
		ScamType:              coerceString(m["scam_type"]),
		AdText:                coerceString(m["ad_text"]),
		Explanation:           coerceString(m["explanation"]),
		PageProfileURI:        coerceString(m["page_profile_uri"]),
		AdURL:                 coerceString(m["ad_url"]),
		PageProfilePictureURL: coerceString(m["page_profile_picture_url"]),
		IsScam:                coerceBool(m["is_scam"]),
		IsActive:              coerceBool(m["is_active"]),
		ThreatLevelRaw:        coerceString(m["threat_level"]),
		PageLikeCount:         coerceCount(m["page_like_count"]),
		ReportCount:           coerceCount(m["report_count"]),
		Reported:              coerceReported(m["reported"]),
		DateScraped:           coerceTime(m["date_scraped"]),
		Summary:               coerceStringList(m["summary"]),
		LinksFound:            coerceStringList(m["links_found"]),
		ScamPatterns:          coerceStringList(m["scam_patterns"]),
		RedFlags:              coerceStringList(m["red_flags"]),
		Recommendations:       coerceStringList(m["recommendations"]),
	}
	r.ThreatCategory = models.DeriveThreatCategory(r.ThreatLevelRaw)
	return r
}

// coerceID canonicalizes any scalar identifier to a string. Numeric ids must
// not pick up a float representation, so integral values format without a
// fractional part.
func coerceID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// coerceBool treats absent and unparsable values as false. Upstream sends
// booleans as true/false, 0/1 and occasionally strings.
func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	default:
		return false
	}
}

// coerceCount parses a non-negative integer counter; anything unparsable or
// negative becomes 0.
func coerceCount(v any) int {
	n, ok := coerceInt(v)
	if !ok || n < 0 {
		return 0
	}
	return n
}

// coerceReported collapses the reported flag to 0 or 1.
func coerceReported(v any) int {
	if n, ok := coerceInt(v); ok && n != 0 {
		return models.ReportSubmitted
	}
	return models.ReportPending
}

func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
		if f, err := t.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	case float64:
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(t)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// coerceTime parses an absolute timestamp and normalizes it to UTC.
// Unparsable input yields nil, which downstream treats as "no date".
func coerceTime(v any) *time.Time {
	s := strings.TrimSpace(coerceString(v))
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			u := ts.UTC()
			return &u
		}
	}
	return nil
}

// coerceStringList normalizes list-valued analysis fields. A proper sequence
// is used as-is; a string that itself encodes a JSON array is decoded; any
// other scalar wraps into a one-element list. Blank entries are dropped.
func coerceStringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return cleanList(t)
	case []string:
		items := make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return cleanList(items)
	case string:
		trimmed := strings.TrimSpace(t)
		if strings.HasPrefix(trimmed, "[") {
			var decoded []any
			if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
				return cleanList(decoded)
			}
		}
		return cleanList([]any{t})
	default:
		return cleanList([]any{t})
	}
}

func cleanList(items []any) []string {
	var out []string
	for _, item := range items {
		s := strings.TrimSpace(coerceString(item))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
