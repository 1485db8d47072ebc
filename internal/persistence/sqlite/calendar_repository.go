package sqlite

import (
	"context"

	"github.com/example/employee-portal/internal/persistence"
)

// CalendarRepository implements persistence.CalendarRepository over SQLite.
type CalendarRepository struct {
	store *Store
}

// NewCalendarRepository returns a calendar repository backed by the store.
func NewCalendarRepository(store *Store) *CalendarRepository {
	return &CalendarRepository{store: store}
}

// CreateEvent inserts a calendar entry.
func (r *CalendarRepository) CreateEvent(ctx context.Context, event persistence.CalendarEvent) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO calendar_events (id, title, description, event_date, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID, event.Title, event.Description, encodeTime(event.Date),
		event.CreatedBy, encodeTime(event.CreatedAt), encodeTime(event.UpdatedAt),
	)
	return mapError(err)
}

// UpdateEvent rewrites the mutable fields of a calendar entry.
func (r *CalendarRepository) UpdateEvent(ctx context.Context, event persistence.CalendarEvent) error {
	result, err := r.store.db.ExecContext(ctx, `
		UPDATE calendar_events SET title = ?, description = ?, event_date = ?, updated_at = ?
		WHERE id = ?
	`, event.Title, event.Description, encodeTime(event.Date), encodeTime(event.UpdatedAt), event.ID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetEvent retrieves a calendar entry by ID.
func (r *CalendarRepository) GetEvent(ctx context.Context, id string) (persistence.CalendarEvent, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, title, description, event_date, created_by, created_at, updated_at
		FROM calendar_events WHERE id = ?
	`, id)
	return scanEvent(row)
}

// ListEvents returns all calendar entries ordered by event date.
func (r *CalendarRepository) ListEvents(ctx context.Context) ([]persistence.CalendarEvent, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, title, description, event_date, created_by, created_at, updated_at
		FROM calendar_events ORDER BY event_date, id
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var events []persistence.CalendarEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// DeleteEvent removes a calendar entry.
func (r *CalendarRepository) DeleteEvent(ctx context.Context, id string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanEvent(row rowScanner) (persistence.CalendarEvent, error) {
	var (
		event     persistence.CalendarEvent
		date      string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&event.ID, &event.Title, &event.Description, &date, &event.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return persistence.CalendarEvent{}, mapError(err)
	}

	if event.Date, err = decodeTime(date); err != nil {
		return persistence.CalendarEvent{}, err
	}
	if event.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.CalendarEvent{}, err
	}
	if event.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.CalendarEvent{}, err
	}
	return event, nil
}
