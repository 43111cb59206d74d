package sorting

import (
	"testing"
	"time"

	"github.com/scamwatch/scamwatch/internal/models"
)

func ids(records []models.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func assertOrder(t *testing.T, got []models.Record, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("got %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("got %v, want %v", gotIDs, want)
		}
	}
}

func datePtr(s string) *time.Time {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	u := ts.UTC()
	return &u
}

func TestSortByStatus(t *testing.T) {
	records := []models.Record{
		{ID: "legit1", IsScam: false},
		{ID: "scam1", IsScam: true},
		{ID: "legit2", IsScam: false},
		{ID: "scam2", IsScam: true},
	}

	assertOrder(t, Sort(records, FieldStatus, true), "scam1", "scam2", "legit1", "legit2")
	assertOrder(t, Sort(records, FieldStatus, false), "legit1", "legit2", "scam1", "scam2")
}

func TestSortByReported(t *testing.T) {
	records := []models.Record{
		{ID: "pending1"},
		{ID: "done", Reported: models.ReportSubmitted},
		{ID: "pending2"},
	}

	assertOrder(t, Sort(records, FieldReported, true), "done", "pending1", "pending2")
}

func TestSortByThreatCategory(t *testing.T) {
	records := []models.Record{
		{ID: "other", ThreatCategory: models.ThreatOther},
		{ID: "low", ThreatCategory: models.ThreatLow},
		{ID: "high", ThreatCategory: models.ThreatHigh},
		{ID: "medium", ThreatCategory: models.ThreatMedium},
	}

	assertOrder(t, Sort(records, FieldThreatLevel, true), "high", "medium", "low", "other")
	assertOrder(t, Sort(records, FieldThreatLevel, false), "other", "low", "medium", "high")
}

func TestSortByDateMissingAlwaysLast(t *testing.T) {
	records := []models.Record{
		{ID: "mar5", DateScraped: datePtr("2024-03-05")},
		{ID: "undated"},
		{ID: "mar1", DateScraped: datePtr("2024-03-01")},
	}

	assertOrder(t, Sort(records, FieldDateScraped, true), "mar1", "mar5", "undated")
	assertOrder(t, Sort(records, FieldDateScraped, false), "mar5", "mar1", "undated")
}

func TestSortByDateNanosecondPrecision(t *testing.T) {
	// Timestamps a few hundred nanoseconds apart must still order; a float64
	// key cannot represent modern epoch nanos exactly.
	base := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	later := base.Add(500 * time.Nanosecond)
	records := []models.Record{
		{ID: "later", DateScraped: &later},
		{ID: "base", DateScraped: &base},
	}

	assertOrder(t, Sort(records, FieldDateScraped, true), "base", "later")
	assertOrder(t, Sort(records, FieldDateScraped, false), "later", "base")
}

func TestSortNumericColumnPinsUnparsable(t *testing.T) {
	// Column values: "3", "bad", "7", "1" — 75% numeric is below the
	// threshold, so pad with one more numeric row to cross 80%.
	records := []models.Record{
		{ID: "3"},
		{ID: "bad"},
		{ID: "7"},
		{ID: "1"},
		{ID: "5"},
	}

	assertOrder(t, Sort(records, FieldID, true), "1", "3", "5", "7", "bad")
	assertOrder(t, Sort(records, FieldID, false), "7", "5", "3", "1", "bad")
}

func TestSortByCounterField(t *testing.T) {
	records := []models.Record{
		{ID: "a", ReportCount: 3},
		{ID: "b", ReportCount: 7},
		{ID: "c", ReportCount: 1},
	}

	assertOrder(t, Sort(records, FieldReportCount, true), "c", "a", "b")
	assertOrder(t, Sort(records, FieldReportCount, false), "b", "a", "c")
}

func TestSortLexicalFallback(t *testing.T) {
	records := []models.Record{
		{ID: "1", PageName: "Zeta Deals"},
		{ID: "2", PageName: "alpha mart"},
		{ID: "3", PageName: "Beta Shop"},
	}

	// Case-sensitive lexical: uppercase letters order before lowercase.
	assertOrder(t, Sort(records, FieldPageName, true), "3", "1", "2")
}

func TestSortStability(t *testing.T) {
	records := []models.Record{
		{ID: "first", ReportCount: 5},
		{ID: "second", ReportCount: 5},
		{ID: "third", ReportCount: 5},
		{ID: "small", ReportCount: 1},
	}

	assertOrder(t, Sort(records, FieldReportCount, true), "small", "first", "second", "third")
	assertOrder(t, Sort(records, FieldReportCount, false), "first", "second", "third", "small")
}

func TestSortUnknownFieldPassThrough(t *testing.T) {
	records := []models.Record{{ID: "b"}, {ID: "a"}}
	assertOrder(t, Sort(records, "no_such_field", true), "b", "a")
}

func TestSortDoesNotMutateInput(t *testing.T) {
	records := []models.Record{{ID: "b"}, {ID: "a"}}
	_ = Sort(records, FieldID, true)
	if records[0].ID != "b" {
		t.Fatal("input slice was reordered in place")
	}
}
