package api

import (
	"net/http"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
)

// AnalyticsHandler serves forecasts and the smaller analytics views.
type AnalyticsHandler struct {
	deps ReportSubmitter
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps ReportSubmitter) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps}
}

func (h *AnalyticsHandler) scoped(w http.ResponseWriter, r *http.Request, op string, kind model.ReportKind, decorate func(*model.ReportRequest) error) {
	q, err := parseQuery(r)
	if err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	req := model.ReportRequest{Kind: kind, Query: q}
	if decorate != nil {
		if err := decorate(&req); err != nil {
			fail(w, WrapKind(op, ErrBadRequest, err))
			return
		}
	}
	serve(w, r, h.deps, op, req)
}

// HandleQuickSummary handles GET /analytics/summary.
func (h *AnalyticsHandler) HandleQuickSummary(w http.ResponseWriter, r *http.Request) {
	h.scoped(w, r, "api.get_quick_summary", model.ReportQuickSummary, nil)
}

// HandleForecast handles GET /analytics/forecast?metric=&granularity=&periods=.
func (h *AnalyticsHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	h.scoped(w, r, "api.get_forecast", model.ReportForecast, func(req *model.ReportRequest) error {
		periods, err := optionalInt(r, "periods")
		if err != nil {
			return err
		}
		v := r.URL.Query()
		req.Metric = v.Get("metric")
		req.Granularity = v.Get("granularity")
		req.Periods = periods
		return nil
	})
}

// HandleFeatureImportance handles GET /analytics/feature-importance.
func (h *AnalyticsHandler) HandleFeatureImportance(w http.ResponseWriter, r *http.Request) {
	h.scoped(w, r, "api.get_feature_importance", model.ReportFeatureImportance, nil)
}

// HandleCriteria handles GET /analytics/criteria.
func (h *AnalyticsHandler) HandleCriteria(w http.ResponseWriter, r *http.Request) {
	h.scoped(w, r, "api.get_criteria_analysis", model.ReportCriteriaAnalysis, nil)
}

// HandleWeeklyDigest handles GET /analytics/weekly-digest?weeks=.
func (h *AnalyticsHandler) HandleWeeklyDigest(w http.ResponseWriter, r *http.Request) {
	h.scoped(w, r, "api.get_weekly_digest", model.ReportWeeklyDigest, func(req *model.ReportRequest) error {
		weeks, err := optionalInt(r, "weeks")
		req.Weeks = weeks
		return err
	})
}

// HandleCompare handles GET /analytics/managers/compare?ids=1,2. No ids
// compares every manager.
func (h *AnalyticsHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	h.scoped(w, r, "api.compare_managers", model.ReportManagerComparison, func(req *model.ReportRequest) error {
		ids, err := idList(r.URL.Query().Get("ids"))
		req.ManagerIDs = ids
		return err
	})
}

func (h *AnalyticsHandler) manager(w http.ResponseWriter, r *http.Request, op string, kind model.ReportKind) {
	req, err := managerRequest(r, kind)
	if err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if kind == model.ReportTrajectory {
		days, err := optionalInt(r, "days_ahead")
		if err != nil {
			fail(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		req.DaysAhead = days
	}
	serve(w, r, h.deps, op, req)
}

// HandleProgress handles GET /analytics/managers/{id}/progress.
func (h *AnalyticsHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	h.manager(w, r, "api.get_progress", model.ReportProgress)
}

// HandleComparison handles GET /analytics/managers/{id}/comparison.
func (h *AnalyticsHandler) HandleComparison(w http.ResponseWriter, r *http.Request) {
	h.manager(w, r, "api.get_comparison_with_team", model.ReportComparisonWithTeam)
}

// HandleTrajectory handles GET /analytics/managers/{id}/trajectory?days_ahead=.
func (h *AnalyticsHandler) HandleTrajectory(w http.ResponseWriter, r *http.Request) {
	h.manager(w, r, "api.get_trajectory", model.ReportTrajectory)
}
