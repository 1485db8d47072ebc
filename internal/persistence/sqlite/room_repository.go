package sqlite

import (
	"context"

	"github.com/example/employee-portal/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository over SQLite.
type RoomRepository struct {
	store *Store
}

// NewRoomRepository returns a room repository backed by the store.
func NewRoomRepository(store *Store) *RoomRepository {
	return &RoomRepository{store: store}
}

// CreateRoom inserts a room catalog entry.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO rooms (id, name, location, capacity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, room.ID, room.Name, room.Location, room.Capacity, encodeTime(room.CreatedAt), encodeTime(room.UpdatedAt))
	return mapError(err)
}

// UpdateRoom rewrites an existing room entry.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	result, err := r.store.db.ExecContext(ctx, `
		UPDATE rooms SET name = ?, location = ?, capacity = ?, updated_at = ?
		WHERE id = ?
	`, room.Name, room.Location, room.Capacity, encodeTime(room.UpdatedAt), room.ID)
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

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, name, location, capacity, created_at, updated_at FROM rooms WHERE id = ?
	`, id)
	return scanRoom(row)
}

// ListRooms returns the room catalog ordered by name.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, name, location, capacity, created_at, updated_at FROM rooms ORDER BY name, id
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// DeleteRoom removes a room entry.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
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

func scanRoom(row rowScanner) (persistence.Room, error) {
	var (
		room      persistence.Room
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&room.ID, &room.Name, &room.Location, &room.Capacity, &createdAt, &updatedAt); err != nil {
		return persistence.Room{}, mapError(err)
	}

	var err error
	if room.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Room{}, err
	}
	if room.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}
