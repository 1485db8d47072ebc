package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/employee-portal/internal/application"
	"github.com/example/employee-portal/internal/export"
)

type issueService interface {
	Raise(ctx context.Context, actor application.Principal, title, description, priority string) (application.Issue, error)
	List(ctx context.Context, actor application.Principal, filter application.IssueFilter) ([]application.Issue, error)
	ListAll(ctx context.Context) ([]application.Issue, error)
	UpdateStatus(ctx context.Context, actor application.Principal, issueID, status string) (application.Issue, error)
	AddComment(ctx context.Context, actor application.Principal, issueID, text string) (application.Issue, error)
	Delete(ctx context.Context, actor application.Principal, issueID string) error
}

type IssueHandler struct {
	service   issueService
	responder responder
	logger    *slog.Logger
}

func NewIssueHandler(service issueService, logger *slog.Logger) *IssueHandler {
	base := defaultLogger(logger)
	return &IssueHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *IssueHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "IssueHandler", operation, attrs...)
}

func (h *IssueHandler) Raise(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req raiseIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Raise", "principal_id", principal.UserID)

	issue, err := h.service.Raise(r.Context(), principal, strings.TrimSpace(req.Title), req.Description, req.Priority)
	if err != nil {
		logger.ErrorContext(r.Context(), "issue creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("issue_id", issue.ID).InfoContext(r.Context(), "issue raised")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, issueResponse{Issue: toIssueDTO(issue)})
}

func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	filter := application.IssueFilter{
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("priority"),
	}

	issues, err := h.service.List(r.Context(), principal, filter)
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID).ErrorContext(r.Context(), "issue listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, issuesResponse{Issues: toIssueDTOs(issues)})
}

func (h *IssueHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	issueID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(issueID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req updateIssueStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	issue, err := h.service.UpdateStatus(r.Context(), principal, issueID, req.Status)
	if err != nil {
		h.log(r.Context(), "UpdateStatus", "principal_id", principal.UserID, "issue_id", issueID).ErrorContext(r.Context(), "issue status update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, issueResponse{Issue: toIssueDTO(issue)})
}

func (h *IssueHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	issueID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(issueID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	issue, err := h.service.AddComment(r.Context(), principal, issueID, strings.TrimSpace(req.Text))
	if err != nil {
		h.log(r.Context(), "AddComment", "principal_id", principal.UserID, "issue_id", issueID).ErrorContext(r.Context(), "comment failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, issueResponse{Issue: toIssueDTO(issue)})
}

func (h *IssueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	issueID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(issueID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "issue_id", issueID)

	if err := h.service.Delete(r.Context(), principal, issueID); err != nil {
		logger.ErrorContext(r.Context(), "issue deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "issue deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ExportExcel streams every issue as an xlsx workbook.
func (h *IssueHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	issues, err := h.service.ListAll(r.Context())
	if err != nil {
		h.log(r.Context(), "ExportExcel").ErrorContext(r.Context(), "issue export failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.IssuesExcel(&buf, issues); err != nil {
		h.log(r.Context(), "ExportExcel").ErrorContext(r.Context(), "workbook rendering failed", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="issues.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ExportPDF streams every issue as a PDF report.
func (h *IssueHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	issues, err := h.service.ListAll(r.Context())
	if err != nil {
		h.log(r.Context(), "ExportPDF").ErrorContext(r.Context(), "issue export failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.IssuesPDF(&buf, issues); err != nil {
		h.log(r.Context(), "ExportPDF").ErrorContext(r.Context(), "pdf rendering failed", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="issues.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type raiseIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type updateIssueStatusRequest struct {
	Status string `json:"status"`
}

type addCommentRequest struct {
	Text string `json:"text"`
}

type issueResponse struct {
	Issue issueDTO `json:"issue"`
}

type issuesResponse struct {
	Issues []issueDTO `json:"issues"`
}

type issueDTO struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Priority    string            `json:"priority"`
	Status      string            `json:"status"`
	RaisedBy    userSummaryDTO    `json:"raisedBy"`
	Comments    []issueCommentDTO `json:"comments,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type issueCommentDTO struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	CreatedBy userSummaryDTO `json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
}

func toIssueDTO(issue application.Issue) issueDTO {
	dto := issueDTO{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Priority:    string(issue.Priority),
		Status:      string(issue.Status),
		RaisedBy:    toUserSummaryDTO(issue.RaisedBy),
		CreatedAt:   issue.CreatedAt,
	}
	for _, comment := range issue.Comments {
		dto.Comments = append(dto.Comments, issueCommentDTO{
			ID:        comment.ID,
			Text:      comment.Text,
			CreatedBy: toUserSummaryDTO(comment.CreatedBy),
			CreatedAt: comment.CreatedAt,
		})
	}
	return dto
}

func toIssueDTOs(issues []application.Issue) []issueDTO {
	if len(issues) == 0 {
		return nil
	}
	out := make([]issueDTO, 0, len(issues))
	for _, issue := range issues {
		out = append(out, toIssueDTO(issue))
	}
	return out
}
