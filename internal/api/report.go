package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/scamwatch/scamwatch/internal/dashboard"
	"github.com/scamwatch/scamwatch/internal/reporting"
	"go.uber.org/zap"
)

// ReportHandler handles POST /api/records/{id}/report requests.
// It submits the record to the law enforcement intake endpoint and marks it
// reported on acknowledgement. Failures carry the submission error taxonomy
// so the caller can tell a timeout from a rejection.
func (s *Server) ReportHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/api/records/{id}/report"
	method := r.Method

	id := mux.Vars(r)["id"]
	logger := s.Logger.With(zap.String("record_id", id))

	err := s.Controller.SubmitReport(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, map[string]string{"status": "reported", "id": id})
		s.Metrics.IncrementRequests(endpoint, method, "200")

	case errors.Is(err, reporting.ErrInvalidIdentifier):
		writeError(w, "record identifier is required", http.StatusBadRequest)
		s.Metrics.IncrementRequests(endpoint, method, "400")

	case errors.Is(err, dashboard.ErrRateLimited):
		logger.Warn("report submission rate limited")
		writeError(w, "too many submissions for this record", http.StatusTooManyRequests)
		s.Metrics.IncrementRequests(endpoint, method, "429")

	case errors.Is(err, reporting.ErrTimeout):
		logger.Error("report submission timed out", zap.Error(err))
		writeError(w, "report submission timed out", http.StatusGatewayTimeout)
		s.Metrics.IncrementRequests(endpoint, method, "504")

	case errors.Is(err, reporting.ErrConnection):
		logger.Error("report sink unreachable", zap.Error(err))
		writeError(w, "report sink unreachable", http.StatusBadGateway)
		s.Metrics.IncrementRequests(endpoint, method, "502")

	default:
		var serverErr *reporting.ServerError
		if errors.As(err, &serverErr) {
			logger.Error("report sink rejected submission", zap.Int("status", serverErr.StatusCode))
			writeError(w, serverErr.Error(), http.StatusBadGateway)
			s.Metrics.IncrementRequests(endpoint, method, "502")
			break
		}
		logger.Error("report submission failed", zap.Error(err))
		writeError(w, "report submission failed", http.StatusInternalServerError)
		s.Metrics.IncrementRequests(endpoint, method, "500")
	}

	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}
