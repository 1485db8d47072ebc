package sqlite

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/employee-portal/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository over SQLite.
type BookingRepository struct {
	store *Store
}

// NewBookingRepository returns a booking repository backed by the store.
func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

// CreateBooking inserts a reservation. The (room_id, start_time) uniqueness
// constraint closes the check-then-insert race between concurrent requests;
// a collision is reported as ErrSlotTaken.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	query := `
		INSERT INTO bookings (id, room_id, booked_by, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.store.db.ExecContext(ctx, query,
		booking.ID,
		booking.RoomID,
		booking.BookedBy,
		encodeTime(booking.Start),
		encodeTime(booking.End),
		encodeTime(booking.CreatedAt),
	)
	if err := mapError(err); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return persistence.ErrSlotTaken
		}
		return err
	}
	return nil
}

// GetBooking retrieves a reservation by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, room_id, booked_by, start_time, end_time, created_at
		FROM bookings WHERE id = ?
	`, id)
	return scanBooking(row)
}

// ListBookings returns reservations matching the filter, ordered by start time.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query := `SELECT id, room_id, booked_by, start_time, end_time, created_at FROM bookings`

	var (
		clauses []string
		args    []any
	)
	if filter.RoomID != "" {
		clauses = append(clauses, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.BookedBy != "" {
		clauses = append(clauses, "booked_by = ?")
		args = append(args, filter.BookedBy)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY start_time, id"

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// ListOverlapping returns bookings for the room whose half-open interval
// intersects [start, end). Boundary-touching bookings are excluded.
func (r *BookingRepository) ListOverlapping(ctx context.Context, roomID string, start, end time.Time) ([]persistence.Booking, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, room_id, booked_by, start_time, end_time, created_at
		FROM bookings
		WHERE room_id = ? AND start_time < ? AND end_time > ?
		ORDER BY start_time
	`, roomID, encodeTime(end), encodeTime(start))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// DeleteBooking removes a reservation.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
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

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var (
		booking   persistence.Booking
		start     string
		end       string
		createdAt string
	)
	if err := row.Scan(&booking.ID, &booking.RoomID, &booking.BookedBy, &start, &end, &createdAt); err != nil {
		return persistence.Booking{}, mapError(err)
	}

	var err error
	if booking.Start, err = decodeTime(start); err != nil {
		return persistence.Booking{}, err
	}
	if booking.End, err = decodeTime(end); err != nil {
		return persistence.Booking{}, err
	}
	if booking.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Booking{}, err
	}
	return booking, nil
}
