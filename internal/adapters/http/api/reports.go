package api

import (
	"net/http"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
)

// ReportsHandler serves the role-specific reports.
type ReportsHandler struct {
	deps ReportSubmitter
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps ReportSubmitter) *ReportsHandler {
	return &ReportsHandler{deps: deps}
}

// HandleExecutive handles GET /reports/executive.
func (h *ReportsHandler) HandleExecutive(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_executive_report"
	h.handleScoped(w, r, op, model.ReportExecutive)
}

// HandleTeam handles GET /reports/team.
func (h *ReportsHandler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team_report"
	h.handleScoped(w, r, op, model.ReportTeam)
}

func (h *ReportsHandler) handleScoped(w http.ResponseWriter, r *http.Request, op string, kind model.ReportKind) {
	q, err := parseQuery(r)
	if err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	serve(w, r, h.deps, op, model.ReportRequest{Kind: kind, Query: q})
}

// HandleManager handles GET /reports/managers/{id}. The manager is compared
// against the whole team, so manager_id in the query string is ignored.
func (h *ReportsHandler) HandleManager(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_manager_report"
	req, err := managerRequest(r, model.ReportManager)
	if err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	serve(w, r, h.deps, op, req)
}

// managerRequest builds a manager-scoped request from the {id} path segment.
func managerRequest(r *http.Request, kind model.ReportKind) (model.ReportRequest, error) {
	id, err := pathID(r)
	if err != nil {
		return model.ReportRequest{}, err
	}
	q, err := parseQuery(r)
	if err != nil {
		return model.ReportRequest{}, err
	}
	q.ManagerID = 0
	return model.ReportRequest{Kind: kind, Query: q, ManagerID: id}, nil
}
