package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/employee-portal/internal/application"
)

type taskService interface {
	Assign(ctx context.Context, actor application.Principal, params application.AssignParams) (application.Task, error)
	UpdateStatus(ctx context.Context, actor application.Principal, taskID, status string) (application.Task, error)
	Cancel(ctx context.Context, actor application.Principal, taskID string) error
	ListMine(ctx context.Context, actor application.Principal) ([]application.Task, error)
	ListAll(ctx context.Context) ([]application.Task, error)
}

type TaskHandler struct {
	service   taskService
	responder responder
	logger    *slog.Logger
}

func NewTaskHandler(service taskService, logger *slog.Logger) *TaskHandler {
	base := defaultLogger(logger)
	return &TaskHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TaskHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TaskHandler", operation, attrs...)
}

func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req assignTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Assign", "principal_id", principal.UserID, "assignee_email", req.AssignedTo)

	params := application.AssignParams{
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		AssigneeEmail: req.AssignedTo,
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		params.DueDate = &due
	}

	task, err := h.service.Assign(r.Context(), principal, params)
	if err != nil {
		logger.ErrorContext(r.Context(), "task assignment failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("task_id", task.ID).InfoContext(r.Context(), "task assigned")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, taskResponse{Task: toTaskDTO(task)})
}

func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(taskID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req updateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	task, err := h.service.UpdateStatus(r.Context(), principal, taskID, req.Status)
	if err != nil {
		h.log(r.Context(), "UpdateStatus", "principal_id", principal.UserID, "task_id", taskID).ErrorContext(r.Context(), "task status update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, taskResponse{Task: toTaskDTO(task)})
}

func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(taskID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Cancel", "principal_id", principal.UserID, "task_id", taskID)

	if err := h.service.Cancel(r.Context(), principal, taskID); err != nil {
		logger.ErrorContext(r.Context(), "task cancellation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "task cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *TaskHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	tasks, err := h.service.ListMine(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "ListMine", "principal_id", principal.UserID).ErrorContext(r.Context(), "task listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, tasksResponse{Tasks: toTaskDTOs(tasks)})
}

func (h *TaskHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.ListAll(r.Context())
	if err != nil {
		h.log(r.Context(), "ListAll").ErrorContext(r.Context(), "task listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, tasksResponse{Tasks: toTaskDTOs(tasks)})
}

type assignTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  string `json:"assignedTo"`
	DueDate     string `json:"dueDate"`
}

type updateTaskStatusRequest struct {
	Status string `json:"status"`
}

type taskResponse struct {
	Task taskDTO `json:"task"`
}

type tasksResponse struct {
	Tasks []taskDTO `json:"tasks"`
}

type taskDTO struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	AssignedTo  userSummaryDTO `json:"assignedTo"`
	AssignedBy  userSummaryDTO `json:"assignedBy"`
	DueDate     string         `json:"dueDate,omitempty"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func toTaskDTO(task application.Task) taskDTO {
	dto := taskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		AssignedTo:  toUserSummaryDTO(task.AssignedTo),
		AssignedBy:  toUserSummaryDTO(task.AssignedBy),
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt,
	}
	if task.DueDate != nil {
		dto.DueDate = task.DueDate.Format("2006-01-02")
	}
	return dto
}

func toTaskDTOs(tasks []application.Task) []taskDTO {
	if len(tasks) == 0 {
		return nil
	}
	out := make([]taskDTO, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskDTO(task))
	}
	return out
}
