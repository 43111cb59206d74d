package models

import (
	"strings"
	"time"
)

// ThreatCategory is the normalized threat bucket derived from the free-text
// threat level supplied by upstream analysis. It is always one of the four
// enumerated values and is recomputed on every load, never persisted
// independently of the raw field.
type ThreatCategory string

const (
	ThreatHigh   ThreatCategory = "HIGH"
	ThreatMedium ThreatCategory = "MEDIUM"
	ThreatLow    ThreatCategory = "LOW"
	ThreatOther  ThreatCategory = "OTHER"
)

// ThreatCategoryOrder lists categories from most to least severe.
// OTHER always ranks last.
var ThreatCategoryOrder = []ThreatCategory{ThreatHigh, ThreatMedium, ThreatLow, ThreatOther}

// DeriveThreatCategory maps a raw threat level string to a ThreatCategory.
// The raw value is uppercased and trimmed; anything that is not exactly
// HIGH, MEDIUM or LOW (including empty input) maps to OTHER.
func DeriveThreatCategory(raw string) ThreatCategory {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "HIGH":
		return ThreatHigh
	case "MEDIUM":
		return ThreatMedium
	case "LOW":
		return ThreatLow
	default:
		return ThreatOther
	}
}

// Report state values for Record.Reported.
const (
	ReportPending   = 0
	ReportSubmitted = 1
)

// Record is one analyzed advertisement with its scam-analysis metadata.
// Instances are produced by the ingest normalizer and are the only form the
// pipeline stages operate on; raw upstream maps never travel past ingest.
type Record struct {
	ID string `json:"id"` // canonicalized string form, unique within a collection

	PageName              string `json:"page_name,omitempty"`
	ScamType              string `json:"scam_type,omitempty"`
	AdText                string `json:"ad_text,omitempty"`
	Explanation           string `json:"explanation,omitempty"`
	PageProfileURI        string `json:"page_profile_uri,omitempty"`
	AdURL                 string `json:"ad_url,omitempty"`
	PageProfilePictureURL string `json:"page_profile_picture_url,omitempty"`

	IsScam   bool `json:"is_scam"`
	IsActive bool `json:"is_active"`

	// ThreatLevelRaw preserves the upstream free text; ThreatCategory is the
	// derived bucket used for filtering and sorting.
	ThreatLevelRaw string         `json:"threat_level,omitempty"`
	ThreatCategory ThreatCategory `json:"threat_category"`

	PageLikeCount int `json:"page_like_count"`
	ReportCount   int `json:"report_count"`

	// Reported is 0 or 1. Once 1 it never reverts within a session.
	Reported int `json:"reported"`

	// DateScraped is nil when upstream supplied no parsable timestamp.
	// Stored in UTC.
	DateScraped *time.Time `json:"date_scraped,omitempty"`

	Summary         []string `json:"summary,omitempty"`
	LinksFound      []string `json:"links_found,omitempty"`
	ScamPatterns    []string `json:"scam_patterns,omitempty"`
	RedFlags        []string `json:"red_flags,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Classification returns the display status derived from the scam flag.
func (r Record) Classification() string {
	if r.IsScam {
		return "SCAM"
	}
	return "LEGIT"
}

// IsReported reports whether a report-to-authorities action has succeeded
// for this record.
func (r Record) IsReported() bool {
	return r.Reported == ReportSubmitted
}
