package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects a write.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrSlotTaken is returned when a booking insert collides with the
	// (room_id, start_time) uniqueness constraint.
	ErrSlotTaken = errors.New("persistence: slot taken")
)
