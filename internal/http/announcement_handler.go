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

type announcementService interface {
	Post(ctx context.Context, actor application.Principal, title, body string) (application.Announcement, error)
	List(ctx context.Context) ([]application.Announcement, error)
	Delete(ctx context.Context, id string) error
}

type AnnouncementHandler struct {
	service   announcementService
	responder responder
	logger    *slog.Logger
}

func NewAnnouncementHandler(service announcementService, logger *slog.Logger) *AnnouncementHandler {
	base := defaultLogger(logger)
	return &AnnouncementHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AnnouncementHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AnnouncementHandler", operation, attrs...)
}

func (h *AnnouncementHandler) Post(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req announcementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	announcement, err := h.service.Post(r.Context(), principal, strings.TrimSpace(req.Title), req.Body)
	if err != nil {
		h.log(r.Context(), "Post", "principal_id", principal.UserID).ErrorContext(r.Context(), "announcement failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, announcementResponse{Announcement: toAnnouncementDTO(announcement)})
}

func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.service.List(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "announcement listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, announcementsResponse{Announcements: toAnnouncementDTOs(announcements)})
}

func (h *AnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.log(r.Context(), "Delete", "announcement_id", id).ErrorContext(r.Context(), "announcement deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type announcementRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type announcementResponse struct {
	Announcement announcementDTO `json:"announcement"`
}

type announcementsResponse struct {
	Announcements []announcementDTO `json:"announcements"`
}

type announcementDTO struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	PostedBy  userSummaryDTO `json:"postedBy"`
	CreatedAt time.Time      `json:"createdAt"`
}

func toAnnouncementDTO(announcement application.Announcement) announcementDTO {
	return announcementDTO{
		ID:        announcement.ID,
		Title:     announcement.Title,
		Body:      announcement.Body,
		PostedBy:  toUserSummaryDTO(announcement.PostedBy),
		CreatedAt: announcement.CreatedAt,
	}
}

func toAnnouncementDTOs(announcements []application.Announcement) []announcementDTO {
	if len(announcements) == 0 {
		return nil
	}
	out := make([]announcementDTO, 0, len(announcements))
	for _, announcement := range announcements {
		out = append(out, toAnnouncementDTO(announcement))
	}
	return out
}
