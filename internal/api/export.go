package api

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

var exportHeader = []string{
	"id", "page_name", "status", "scam_type", "threat_level",
	"page_like_count", "report_count", "reported", "date_scraped", "ad_url",
}

// ExportHandler handles GET /api/export requests, streaming the filtered and
// sorted collection as CSV. Pagination does not apply to exports; the full
// visible set is written.
func (s *Server) ExportHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/api/export"
	method := r.Method

	records := s.Controller.Filtered()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="scamwatch_records.csv"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		s.Logger.Error("failed to write export header", zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		return
	}
	for _, record := range records {
		scraped := ""
		if record.DateScraped != nil {
			scraped = record.DateScraped.Format(time.RFC3339)
		}
		row := []string{
			record.ID,
			record.PageName,
			record.Classification(),
			record.ScamType,
			string(record.ThreatCategory),
			strconv.Itoa(record.PageLikeCount),
			strconv.Itoa(record.ReportCount),
			strconv.Itoa(record.Reported),
			scraped,
			record.AdURL,
		}
		if err := cw.Write(row); err != nil {
			s.Logger.Error("failed to write export row", zap.String("record_id", record.ID), zap.Error(err))
			s.Metrics.IncrementRequests(endpoint, method, "500")
			s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		s.Logger.Error("failed to flush export", zap.Error(err))
	}

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}
