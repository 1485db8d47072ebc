package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/employee-portal/internal/persistence"
)

// CalendarService manages the shared event calendar.
type CalendarService struct {
	events      persistence.CalendarRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

func NewCalendarService(events persistence.CalendarRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CalendarService {
	if idGenerator == nil {
		idGenerator = func() string { return randomHex(16) }
	}
	if now == nil {
		now = time.Now
	}
	return &CalendarService{events: events, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

// EventParams carries the writable fields of a calendar event.
type EventParams struct {
	Title       string
	Description string
	Date        time.Time
}

func (p EventParams) validate() *ValidationError {
	vErr := &ValidationError{}
	if p.Title == "" {
		vErr.add("title", "title is required")
	}
	if p.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// Create adds an event to the calendar.
func (s *CalendarService) Create(ctx context.Context, actor Principal, params EventParams) (CalendarEvent, error) {
	if vErr := params.validate(); vErr != nil {
		return CalendarEvent{}, vErr
	}

	now := s.now()
	record := persistence.CalendarEvent{
		ID:          s.idGenerator(),
		Title:       params.Title,
		Description: params.Description,
		Date:        params.Date,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.events.CreateEvent(ctx, record); err != nil {
		return CalendarEvent{}, err
	}

	serviceLogger(ctx, s.logger, "CalendarService", "Create").InfoContext(ctx, "event created", "event_id", record.ID)
	return eventFromRecord(record), nil
}

// Update rewrites an event's details.
func (s *CalendarService) Update(ctx context.Context, id string, params EventParams) (CalendarEvent, error) {
	if vErr := params.validate(); vErr != nil {
		return CalendarEvent{}, vErr
	}

	record, err := s.events.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return CalendarEvent{}, ErrNotFound
		}
		return CalendarEvent{}, err
	}

	record.Title = params.Title
	record.Description = params.Description
	record.Date = params.Date
	record.UpdatedAt = s.now()
	if err := s.events.UpdateEvent(ctx, record); err != nil {
		return CalendarEvent{}, err
	}
	return eventFromRecord(record), nil
}

// List returns all calendar events.
func (s *CalendarService) List(ctx context.Context) ([]CalendarEvent, error) {
	records, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	events := make([]CalendarEvent, 0, len(records))
	for _, record := range records {
		events = append(events, eventFromRecord(record))
	}
	return events, nil
}

// Delete removes an event.
func (s *CalendarService) Delete(ctx context.Context, id string) error {
	if err := s.events.DeleteEvent(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
