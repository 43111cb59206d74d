package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/scamwatch/scamwatch/internal/logic/filters"
	"github.com/scamwatch/scamwatch/internal/models"
)

const dateParamLayout = "2006-01-02"

// RecordsHandler handles GET /api/records requests.
// Query parameters mirror the dashboard controls: classification, threat
// (comma-separated categories), start/end date range with include_undated,
// sort and order, page and page_size. The filtered, sorted page is returned
// together with pagination bookkeeping.
func (s *Server) RecordsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/api/records"
	method := r.Method

	criteria, err := parseCriteria(r)
	if err != nil {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.Controller.SetCriteria(criteria)

	if field := r.URL.Query().Get("sort"); field != "" {
		ascending := strings.EqualFold(r.URL.Query().Get("order"), "asc")
		s.Controller.SetSort(field, ascending)
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			s.Metrics.IncrementRequests(endpoint, method, "400")
			s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
			writeError(w, "invalid page_size", http.StatusBadRequest)
			return
		}
		s.Controller.SetPageSize(size)
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			s.Metrics.IncrementRequests(endpoint, method, "400")
			s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
			writeError(w, "invalid page", http.StatusBadRequest)
			return
		}
		s.Controller.SetPage(page)
	}

	view := s.Controller.View()
	writeJSON(w, view)

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}

// RecordHandler handles GET /api/records/{id} requests, returning the full
// analysis for a single record looked up by its global identifier.
func (s *Server) RecordHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/api/records/{id}"
	method := r.Method

	id := mux.Vars(r)["id"]
	record, err := s.Controller.Select(id)
	if errors.Is(err, models.ErrNotFound) {
		s.Metrics.IncrementRequests(endpoint, method, "404")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		writeError(w, "record not found", http.StatusNotFound)
		return
	}

	writeJSON(w, record)

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}

// parseCriteria assembles filter criteria from request query parameters.
func parseCriteria(r *http.Request) (filters.Criteria, error) {
	q := r.URL.Query()
	criteria := filters.Criteria{
		Classification: filters.ParseClassification(q.Get("classification")),
		IncludeUndated: true,
	}

	if raw := q.Get("threat"); raw != "" {
		criteria.ThreatCategories = make(map[models.ThreatCategory]bool)
		for _, part := range strings.Split(raw, ",") {
			category := models.ThreatCategory(strings.ToUpper(strings.TrimSpace(part)))
			switch category {
			case models.ThreatHigh, models.ThreatMedium, models.ThreatLow, models.ThreatOther:
				criteria.ThreatCategories[category] = true
			default:
				return filters.Criteria{}, fmt.Errorf("unknown threat category %q", part)
			}
		}
	}

	if raw := q.Get("include_undated"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return filters.Criteria{}, fmt.Errorf("invalid include_undated %q", raw)
		}
		criteria.IncludeUndated = include
	}

	startRaw, endRaw := q.Get("start"), q.Get("end")
	if startRaw != "" || endRaw != "" {
		if startRaw == "" || endRaw == "" {
			return filters.Criteria{}, errors.New("start and end must be supplied together")
		}
		startDate, err := time.Parse(dateParamLayout, startRaw)
		if err != nil {
			return filters.Criteria{}, fmt.Errorf("invalid start date %q", startRaw)
		}
		endDate, err := time.Parse(dateParamLayout, endRaw)
		if err != nil {
			return filters.Criteria{}, fmt.Errorf("invalid end date %q", endRaw)
		}
		criteria.DateRange = &filters.DateRange{Start: startDate, End: endDate}
	}

	return criteria, nil
}
