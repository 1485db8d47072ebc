package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/employee-portal/internal/persistence"
)

// RoomService manages the bookable room catalog.
type RoomService struct {
	rooms       persistence.RoomRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

func NewRoomService(rooms persistence.RoomRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return randomHex(16) }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{rooms: rooms, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

// RoomParams carries the writable fields of a room.
type RoomParams struct {
	Name     string
	Location string
	Capacity int
}

func (p RoomParams) validate() *ValidationError {
	vErr := &ValidationError{}
	if p.Name == "" {
		vErr.add("name", "name is required")
	}
	if p.Capacity < 0 {
		vErr.add("capacity", "capacity must not be negative")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// Create adds a room to the catalog.
func (s *RoomService) Create(ctx context.Context, params RoomParams) (Room, error) {
	if vErr := params.validate(); vErr != nil {
		return Room{}, vErr
	}

	now := s.now()
	record := persistence.Room{
		ID:        s.idGenerator(),
		Name:      params.Name,
		Location:  params.Location,
		Capacity:  params.Capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.rooms.CreateRoom(ctx, record); err != nil {
		return Room{}, err
	}

	serviceLogger(ctx, s.logger, "RoomService", "Create").InfoContext(ctx, "room created", "room_id", record.ID)
	return roomFromRecord(record), nil
}

// Update rewrites a room's details.
func (s *RoomService) Update(ctx context.Context, id string, params RoomParams) (Room, error) {
	if vErr := params.validate(); vErr != nil {
		return Room{}, vErr
	}

	record, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Room{}, ErrNotFound
		}
		return Room{}, err
	}

	record.Name = params.Name
	record.Location = params.Location
	record.Capacity = params.Capacity
	record.UpdatedAt = s.now()
	if err := s.rooms.UpdateRoom(ctx, record); err != nil {
		return Room{}, err
	}
	return roomFromRecord(record), nil
}

// List returns all rooms.
func (s *RoomService) List(ctx context.Context) ([]Room, error) {
	records, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]Room, 0, len(records))
	for _, record := range records {
		rooms = append(rooms, roomFromRecord(record))
	}
	return rooms, nil
}

// Delete removes a room from the catalog.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	if err := s.rooms.DeleteRoom(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	serviceLogger(ctx, s.logger, "RoomService", "Delete").InfoContext(ctx, "room deleted", "room_id", id)
	return nil
}
