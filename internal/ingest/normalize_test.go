package ingest

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/scamwatch/scamwatch/internal/models"
)

func TestNormalizeThreatCategories(t *testing.T) {
	raw := []map[string]any{
		{"id": "1", "threat_level": "high"},
		{"id": "2", "threat_level": ""},
		{"id": "3", "threat_level": nil},
	}

	recs := Normalize(raw)
	want := []models.ThreatCategory{models.ThreatHigh, models.ThreatOther, models.ThreatOther}
	for i, w := range want {
		if recs[i].ThreatCategory != w {
			t.Errorf("record %d: threat category %s, want %s", i, recs[i].ThreatCategory, w)
		}
	}
}

func TestNormalizeIDCanonicalization(t *testing.T) {
	raw := []map[string]any{
		{"id": "abc"},
		{"id": float64(42)},
		{"id": json.Number("9007199254740993")}, // beyond float64 precision
		{"id": nil},
	}

	recs := Normalize(raw)
	want := []string{"abc", "42", "9007199254740993", ""}
	for i, w := range want {
		if recs[i].ID != w {
			t.Errorf("record %d: id %q, want %q", i, recs[i].ID, w)
		}
	}
}

func TestNormalizeCounters(t *testing.T) {
	raw := []map[string]any{
		{"page_like_count": "1500", "report_count": float64(3)},
		{"page_like_count": "bad", "report_count": nil},
		{"page_like_count": float64(-7)},
	}

	recs := Normalize(raw)
	if recs[0].PageLikeCount != 1500 || recs[0].ReportCount != 3 {
		t.Fatalf("parsable counters mangled: %+v", recs[0])
	}
	if recs[1].PageLikeCount != 0 || recs[1].ReportCount != 0 {
		t.Fatalf("unparsable counters should default to 0: %+v", recs[1])
	}
	if recs[2].PageLikeCount != 0 {
		t.Fatalf("negative counter should clamp to 0, got %d", recs[2].PageLikeCount)
	}
}

func TestNormalizeBooleans(t *testing.T) {
	raw := []map[string]any{
		{"is_scam": true, "is_active": float64(1)},
		{"is_scam": "true", "is_active": "nope"},
		{"is_scam": nil},
	}

	recs := Normalize(raw)
	if !recs[0].IsScam || !recs[0].IsActive {
		t.Fatalf("bool/numeric truthy values not coerced: %+v", recs[0])
	}
	if !recs[1].IsScam || recs[1].IsActive {
		t.Fatalf("string coercion wrong: %+v", recs[1])
	}
	if recs[2].IsScam {
		t.Fatal("absent is_scam should be false")
	}
}

func TestNormalizeReportedFlag(t *testing.T) {
	raw := []map[string]any{
		{"reported": float64(1)},
		{"reported": "1"},
		{"reported": float64(0)},
		{"reported": "garbage"},
		{},
	}

	recs := Normalize(raw)
	want := []int{1, 1, 0, 0, 0}
	for i, w := range want {
		if recs[i].Reported != w {
			t.Errorf("record %d: reported %d, want %d", i, recs[i].Reported, w)
		}
	}
}

func TestNormalizeDates(t *testing.T) {
	raw := []map[string]any{
		{"date_scraped": "2024-03-05T10:30:00Z"},
		{"date_scraped": "2024-03-05 10:30:00"},
		{"date_scraped": "2024-03-05"},
		{"date_scraped": "not a date"},
		{"date_scraped": ""},
	}

	recs := Normalize(raw)
	for i := 0; i < 3; i++ {
		if recs[i].DateScraped == nil {
			t.Fatalf("record %d: expected parsed date", i)
		}
		if loc := recs[i].DateScraped.Location(); loc != time.UTC {
			t.Fatalf("record %d: date not normalized to UTC: %v", i, loc)
		}
	}
	if recs[0].DateScraped.Hour() != 10 {
		t.Fatalf("unexpected parsed time: %v", recs[0].DateScraped)
	}
	for i := 3; i < 5; i++ {
		if recs[i].DateScraped != nil {
			t.Fatalf("record %d: unparsable date should be absent, got %v", i, recs[i].DateScraped)
		}
	}
}

func TestNormalizeListCoercion(t *testing.T) {
	raw := []map[string]any{
		{"summary": []any{"one", "", "  ", "two"}},
		{"summary": "just a finding"},
		{"summary": `["a","b",""]`},
		{"summary": `[not json`},
		{"summary": nil},
	}

	recs := Normalize(raw)
	cases := [][]string{
		{"one", "two"},
		{"just a finding"},
		{"a", "b"},
		{"[not json"},
		nil,
	}
	for i, want := range cases {
		if !reflect.DeepEqual(recs[i].Summary, want) {
			t.Errorf("record %d: summary %v, want %v", i, recs[i].Summary, want)
		}
	}
}

// Normalizing an already-canonical batch must be the identity.
func TestNormalizeIdempotent(t *testing.T) {
	raw := []map[string]any{
		{
			"id":              float64(7),
			"page_name":       "Example Page",
			"is_scam":         true,
			"threat_level":    "high",
			"page_like_count": "250",
			"report_count":    "bad",
			"reported":        float64(1),
			"date_scraped":    "2024-03-05T10:30:00Z",
			"summary":         `["a","b"]`,
			"red_flags":       "single flag",
		},
	}

	first := Normalize(raw)

	// Round-trip through JSON the way a canonical payload would arrive.
	blob, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var canonical []map[string]any
	if err := json.Unmarshal(blob, &canonical); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	second := Normalize(canonical)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalize not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
