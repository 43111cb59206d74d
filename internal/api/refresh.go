package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/scamwatch/scamwatch/internal/upstream"
	"go.uber.org/zap"
)

// RefreshHandler handles POST /api/refresh requests, forcing a reload of the
// record collection from the backend. The collection is left unchanged on any
// load failure.
func (s *Server) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/api/refresh"
	method := r.Method

	err := s.Controller.Refresh(r.Context())
	switch {
	case err == nil:
		writeJSON(w, map[string]interface{}{
			"status":  "refreshed",
			"records": s.Controller.View().TotalRecords,
		})
		s.Metrics.IncrementRequests(endpoint, method, "200")

	case errors.Is(err, upstream.ErrTimeout):
		s.Logger.Error("refresh timed out", zap.Error(err))
		writeError(w, "data source timed out", http.StatusGatewayTimeout)
		s.Metrics.IncrementRequests(endpoint, method, "504")

	case errors.Is(err, upstream.ErrConnection):
		s.Logger.Error("data source unreachable", zap.Error(err))
		writeError(w, "data source unreachable", http.StatusBadGateway)
		s.Metrics.IncrementRequests(endpoint, method, "502")

	case errors.Is(err, upstream.ErrMalformed):
		s.Logger.Error("data source returned a malformed payload", zap.Error(err))
		writeError(w, "data source returned a malformed payload", http.StatusBadGateway)
		s.Metrics.IncrementRequests(endpoint, method, "502")

	default:
		var serverErr *upstream.ServerError
		if errors.As(err, &serverErr) {
			s.Logger.Error("data source error", zap.Int("status", serverErr.StatusCode))
			writeError(w, serverErr.Error(), http.StatusBadGateway)
			s.Metrics.IncrementRequests(endpoint, method, "502")
			break
		}
		s.Logger.Error("refresh failed", zap.Error(err))
		writeError(w, "refresh failed", http.StatusInternalServerError)
		s.Metrics.IncrementRequests(endpoint, method, "500")
	}

	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}
