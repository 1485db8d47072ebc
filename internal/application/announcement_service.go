package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/employee-portal/internal/persistence"
)

// AnnouncementService manages portal-wide notices.
type AnnouncementService struct {
	announcements persistence.AnnouncementRepository
	users         persistence.UserRepository
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

func NewAnnouncementService(announcements persistence.AnnouncementRepository, users persistence.UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AnnouncementService {
	if idGenerator == nil {
		idGenerator = func() string { return randomHex(16) }
	}
	if now == nil {
		now = time.Now
	}
	return &AnnouncementService{announcements: announcements, users: users, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

// Post publishes a notice visible to everyone.
func (s *AnnouncementService) Post(ctx context.Context, actor Principal, title, body string) (Announcement, error) {
	vErr := &ValidationError{}
	if title == "" {
		vErr.add("title", "title is required")
	}
	if body == "" {
		vErr.add("body", "body is required")
	}
	if vErr.HasErrors() {
		return Announcement{}, vErr
	}

	record := persistence.Announcement{
		ID:        s.idGenerator(),
		Title:     title,
		Body:      body,
		PostedBy:  actor.UserID,
		CreatedAt: s.now(),
	}
	if err := s.announcements.CreateAnnouncement(ctx, record); err != nil {
		return Announcement{}, err
	}

	serviceLogger(ctx, s.logger, "AnnouncementService", "Post").InfoContext(ctx, "announcement posted", "announcement_id", record.ID)
	return Announcement{
		ID:        record.ID,
		Title:     record.Title,
		Body:      record.Body,
		PostedBy:  UserSummary{ID: actor.UserID, Name: actor.Name, Email: actor.Email, Role: actor.Role},
		CreatedAt: record.CreatedAt,
	}, nil
}

// List returns all notices, newest first, with authors resolved.
func (s *AnnouncementService) List(ctx context.Context) ([]Announcement, error) {
	records, err := s.announcements.ListAnnouncements(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	usersByID := make(map[string]persistence.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	announcements := make([]Announcement, 0, len(records))
	for _, record := range records {
		a := Announcement{
			ID:        record.ID,
			Title:     record.Title,
			Body:      record.Body,
			CreatedAt: record.CreatedAt,
		}
		if author, ok := usersByID[record.PostedBy]; ok {
			a.PostedBy = summaryFromRecord(author)
		}
		announcements = append(announcements, a)
	}
	return announcements, nil
}

// Delete removes a notice.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if err := s.announcements.DeleteAnnouncement(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
