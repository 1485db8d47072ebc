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

type pollService interface {
	Create(ctx context.Context, actor application.Principal, question string, options []string) (application.Poll, error)
	List(ctx context.Context) ([]application.Poll, error)
	Vote(ctx context.Context, actor application.Principal, pollID, optionID string) (application.Poll, error)
	Delete(ctx context.Context, actor application.Principal, pollID string) error
}

type PollHandler struct {
	service   pollService
	responder responder
	logger    *slog.Logger
}

func NewPollHandler(service pollService, logger *slog.Logger) *PollHandler {
	base := defaultLogger(logger)
	return &PollHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *PollHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PollHandler", operation, attrs...)
}

func (h *PollHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	poll, err := h.service.Create(r.Context(), principal, strings.TrimSpace(req.Question), req.Options)
	if err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID).ErrorContext(r.Context(), "poll creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, pollResponse{Poll: toPollDTO(poll)})
}

func (h *PollHandler) List(w http.ResponseWriter, r *http.Request) {
	polls, err := h.service.List(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "poll listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, pollsResponse{Polls: toPollDTOs(polls)})
}

func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	pollID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(pollID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Vote", "principal_id", principal.UserID, "poll_id", pollID)

	poll, err := h.service.Vote(r.Context(), principal, pollID, req.OptionID)
	if err != nil {
		logger.ErrorContext(r.Context(), "vote failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "vote recorded")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, pollResponse{Poll: toPollDTO(poll)})
}

func (h *PollHandler) Delete(w http.ResponseWriter, r *http.Request) {
	pollID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(pollID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	if err := h.service.Delete(r.Context(), principal, pollID); err != nil {
		h.log(r.Context(), "Delete", "principal_id", principal.UserID, "poll_id", pollID).ErrorContext(r.Context(), "poll deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type createPollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type voteRequest struct {
	OptionID string `json:"optionId"`
}

type pollResponse struct {
	Poll pollDTO `json:"poll"`
}

type pollsResponse struct {
	Polls []pollDTO `json:"polls"`
}

type pollDTO struct {
	ID        string          `json:"id"`
	Question  string          `json:"question"`
	Options   []pollOptionDTO `json:"options"`
	CreatedBy string          `json:"createdBy"`
	CreatedAt time.Time       `json:"createdAt"`
}

type pollOptionDTO struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

func toPollDTO(poll application.Poll) pollDTO {
	dto := pollDTO{
		ID:        poll.ID,
		Question:  poll.Question,
		CreatedBy: poll.CreatedBy,
		CreatedAt: poll.CreatedAt,
	}
	for _, option := range poll.Options {
		dto.Options = append(dto.Options, pollOptionDTO{ID: option.ID, Text: option.Text, Votes: option.Votes})
	}
	return dto
}

func toPollDTOs(polls []application.Poll) []pollDTO {
	if len(polls) == 0 {
		return nil
	}
	out := make([]pollDTO, 0, len(polls))
	for _, poll := range polls {
		out = append(out, toPollDTO(poll))
	}
	return out
}
