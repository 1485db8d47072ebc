package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/employee-portal/internal/application"
)

type analyticsService interface {
	ForEmployee(ctx context.Context, actor application.Principal) (application.EmployeeStats, error)
	ForOrg(ctx context.Context) (application.OrgStats, error)
}

type AnalyticsHandler struct {
	service   analyticsService
	responder responder
	logger    *slog.Logger
}

func NewAnalyticsHandler(service analyticsService, logger *slog.Logger) *AnalyticsHandler {
	base := defaultLogger(logger)
	return &AnalyticsHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AnalyticsHandler) Employee(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	stats, err := h.service.ForEmployee(r.Context(), principal)
	if err != nil {
		handlerLogger(r.Context(), h.logger, "AnalyticsHandler", "Employee").ErrorContext(r.Context(), "stats failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, employeeStatsResponse{
		Bookings:       stats.Bookings,
		TasksAssigned:  stats.TasksAssigned,
		TasksCompleted: stats.TasksCompleted,
		IssuesRaised:   stats.IssuesRaised,
		IssuesResolved: stats.IssuesResolved,
	})
}

func (h *AnalyticsHandler) Org(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.ForOrg(r.Context())
	if err != nil {
		handlerLogger(r.Context(), h.logger, "AnalyticsHandler", "Org").ErrorContext(r.Context(), "stats failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, orgStatsResponse{
		Users:          stats.Users,
		Bookings:       stats.Bookings,
		Tasks:          stats.Tasks,
		TasksCompleted: stats.TasksCompleted,
		Issues:         stats.Issues,
		IssuesResolved: stats.IssuesResolved,
		IssuesPending:  stats.IssuesPending,
	})
}

type employeeStatsResponse struct {
	Bookings       int `json:"bookings"`
	TasksAssigned  int `json:"tasksAssigned"`
	TasksCompleted int `json:"tasksCompleted"`
	IssuesRaised   int `json:"issuesRaised"`
	IssuesResolved int `json:"issuesResolved"`
}

type orgStatsResponse struct {
	Users          int `json:"users"`
	Bookings       int `json:"bookings"`
	Tasks          int `json:"tasks"`
	TasksCompleted int `json:"tasksCompleted"`
	Issues         int `json:"issues"`
	IssuesResolved int `json:"issuesResolved"`
	IssuesPending  int `json:"issuesPending"`
}
