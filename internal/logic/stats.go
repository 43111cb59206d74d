package logic

import (
	"sort"

	"github.com/scamwatch/scamwatch/internal/models"
)

// Summary holds the overview metrics shown above the table, computed over
// the current filtered view.
type Summary struct {
	Total      int `json:"total"`
	ScamCount  int `json:"scam_count"`
	LegitCount int `json:"legit_count"`
	HighThreat int `json:"high_threat"`
	Reported   int `json:"reported"`
}

// ThreatBucket is one bar of the threat distribution, in severity order.
type ThreatBucket struct {
	Category models.ThreatCategory `json:"category"`
	Count    int                   `json:"count"`
}

// DailyCount is one point of the daily ad volume series. Date is the UTC
// day in YYYY-MM-DD form; undated records are excluded.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// PageCount ranks a page by the number of scam ads attributed to it.
type PageCount struct {
	PageName string `json:"page_name"`
	Count    int    `json:"count"`
}

// Analytics bundles the chart data series derived from a filtered view.
// Rendering is the caller's concern; this is just the numbers.
type Analytics struct {
	ThreatDistribution []ThreatBucket `json:"threat_distribution"`
	DailyVolume        []DailyCount   `json:"daily_volume"`
	TopScamPages       []PageCount    `json:"top_scam_pages"`
}

// topScamPagesLimit caps the page ranking the way the dashboard's deep-dive
// chart does.
const topScamPagesLimit = 10

// Summarize computes the overview metrics for a record collection.
func Summarize(records []models.Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.IsScam {
			s.ScamCount++
		} else {
			s.LegitCount++
		}
		if r.ThreatCategory == models.ThreatHigh {
			s.HighThreat++
		}
		if r.IsReported() {
			s.Reported++
		}
	}
	return s
}

// Analyze computes the chart data series for a record collection.
func Analyze(records []models.Record) Analytics {
	byThreat := make(map[models.ThreatCategory]int)
	byDay := make(map[string]int)
	scamByPage := make(map[string]int)

	for _, r := range records {
		byThreat[r.ThreatCategory]++
		if r.DateScraped != nil {
			byDay[r.DateScraped.Format("2006-01-02")]++
		}
		if r.IsScam && r.PageName != "" {
			scamByPage[r.PageName]++
		}
	}

	a := Analytics{}
	for _, cat := range models.ThreatCategoryOrder {
		a.ThreatDistribution = append(a.ThreatDistribution, ThreatBucket{Category: cat, Count: byThreat[cat]})
	}

	for day, count := range byDay {
		a.DailyVolume = append(a.DailyVolume, DailyCount{Date: day, Count: count})
	}
	sort.Slice(a.DailyVolume, func(i, j int) bool {
		return a.DailyVolume[i].Date < a.DailyVolume[j].Date
	})

	for page, count := range scamByPage {
		a.TopScamPages = append(a.TopScamPages, PageCount{PageName: page, Count: count})
	}
	// Highest count first; ties break alphabetically so output is stable.
	sort.Slice(a.TopScamPages, func(i, j int) bool {
		if a.TopScamPages[i].Count != a.TopScamPages[j].Count {
			return a.TopScamPages[i].Count > a.TopScamPages[j].Count
		}
		return a.TopScamPages[i].PageName < a.TopScamPages[j].PageName
	})
	if len(a.TopScamPages) > topScamPagesLimit {
		a.TopScamPages = a.TopScamPages[:topScamPagesLimit]
	}

	return a
}
