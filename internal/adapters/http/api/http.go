// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
)

// Dependencies required by HTTP handlers. Every report is produced through
// Submit, which runs it on the worker pool.
type Dependencies interface {
	ReportSubmitter
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	reportsHandler   *ReportsHandler
	analyticsHandler *AnalyticsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		reportsHandler:   NewReportsHandler(deps),
		analyticsHandler: NewAnalyticsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /reports/executive", MetricsMiddleware(s.reportsHandler.HandleExecutive, "reports_executive"))
	mux.HandleFunc("GET /reports/team", MetricsMiddleware(s.reportsHandler.HandleTeam, "reports_team"))
	mux.HandleFunc("GET /reports/managers/{id}", MetricsMiddleware(s.reportsHandler.HandleManager, "reports_manager"))

	a := s.analyticsHandler
	mux.HandleFunc("GET /analytics/summary", MetricsMiddleware(a.HandleQuickSummary, "analytics_summary"))
	mux.HandleFunc("GET /analytics/forecast", MetricsMiddleware(a.HandleForecast, "analytics_forecast"))
	mux.HandleFunc("GET /analytics/feature-importance", MetricsMiddleware(a.HandleFeatureImportance, "analytics_feature_importance"))
	mux.HandleFunc("GET /analytics/criteria", MetricsMiddleware(a.HandleCriteria, "analytics_criteria"))
	mux.HandleFunc("GET /analytics/weekly-digest", MetricsMiddleware(a.HandleWeeklyDigest, "analytics_weekly_digest"))
	mux.HandleFunc("GET /analytics/managers/compare", MetricsMiddleware(a.HandleCompare, "analytics_compare"))
	mux.HandleFunc("GET /analytics/managers/{id}/progress", MetricsMiddleware(a.HandleProgress, "analytics_progress"))
	mux.HandleFunc("GET /analytics/managers/{id}/comparison", MetricsMiddleware(a.HandleComparison, "analytics_comparison"))
	mux.HandleFunc("GET /analytics/managers/{id}/trajectory", MetricsMiddleware(a.HandleTrajectory, "analytics_trajectory"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail writes err with the status its kind maps to.
func fail(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	writeError(w, status, code, err)
}

// ReportSubmitter runs a report request and waits for the result.
type ReportSubmitter interface {
	// Submit builds a report; it fails fast when the queue is full.
	Submit(ctx context.Context, req model.ReportRequest) (any, error)
}

func serve(w http.ResponseWriter, r *http.Request, deps ReportSubmitter, op string, req model.ReportRequest) {
	v, err := deps.Submit(r.Context(), req)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}
