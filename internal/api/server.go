// Package api exposes the dashboard pipeline over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scamwatch/scamwatch/internal/config"
	"github.com/scamwatch/scamwatch/internal/dashboard"
	"github.com/scamwatch/scamwatch/internal/db"
	"github.com/scamwatch/scamwatch/internal/middleware"
	"github.com/scamwatch/scamwatch/internal/observability"
	"go.uber.org/zap"
)

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger     *zap.Logger
	Controller *dashboard.Controller
	Store      *db.RedisStore
	Metrics    observability.MetricsRegistry
	Config     config.Config
}

// NewServer constructs a Server.
func NewServer(logger *zap.Logger, controller *dashboard.Controller, store *db.RedisStore, metrics observability.MetricsRegistry, cfg config.Config) *Server {
	return &Server{
		Logger:     logger,
		Controller: controller,
		Store:      store,
		Metrics:    metrics,
		Config:     cfg,
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.WithRequestID())
	r.Use(middleware.WithRequestLogger(s.Logger))

	r.HandleFunc("/healthz", s.HealthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/records", s.RecordsHandler).Methods(http.MethodGet)
	api.HandleFunc("/records/{id}", s.RecordHandler).Methods(http.MethodGet)
	api.HandleFunc("/records/{id}/report", s.ReportHandler).Methods(http.MethodPost)
	api.HandleFunc("/refresh", s.RefreshHandler).Methods(http.MethodPost)
	api.HandleFunc("/stats", s.StatsHandler).Methods(http.MethodGet)
	api.HandleFunc("/export", s.ExportHandler).Methods(http.MethodGet)
	return r
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
