package api

import (
	"net/http"
	"time"

	"github.com/scamwatch/scamwatch/internal/logic"
	"go.uber.org/zap"
)

// statsResponse is the overview panel payload.
type statsResponse struct {
	Summary        logic.Summary   `json:"summary"`
	Analytics      logic.Analytics `json:"analytics"`
	ReportsToday   int64           `json:"reports_today"`
	CollectionTime *time.Time      `json:"collection_time,omitempty"`
}

// StatsHandler handles GET /api/stats requests, returning overview metrics
// and chart data computed over the full collection.
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/api/stats"
	method := r.Method

	summary, analytics := s.Controller.Stats()
	resp := statsResponse{Summary: summary, Analytics: analytics}
	if s.Store != nil {
		count, err := s.Store.GetReportCount()
		if err != nil {
			s.Logger.Warn("report counter unavailable", zap.Error(err))
		}
		resp.ReportsToday = count
	}
	if loadedAt := s.Controller.LoadedAt(); !loadedAt.IsZero() {
		resp.CollectionTime = &loadedAt
	}

	writeJSON(w, resp)

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}
