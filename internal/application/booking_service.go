package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/employee-portal/internal/booking"
	"github.com/example/employee-portal/internal/persistence"
	"github.com/example/employee-portal/internal/policy"
)

// BookingService reserves and releases 60-minute room slots.
type BookingService struct {
	bookings    persistence.BookingRepository
	rooms       persistence.RoomRepository
	users       persistence.UserRepository
	notifier    Notifier
	idGenerator func() string
	now         func() time.Time
	loc         *time.Location
	logger      *slog.Logger
}

func NewBookingService(bookings persistence.BookingRepository, rooms persistence.RoomRepository, users persistence.UserRepository, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if idGenerator == nil {
		idGenerator = func() string { return randomHex(16) }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		rooms:       rooms,
		users:       users,
		notifier:    notifier,
		idGenerator: idGenerator,
		now:         now,
		loc:         time.Local,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// Create reserves the slot starting at date+startTime for the acting user.
// The slot is exactly one hour and must begin at one of the allowed start
// times. An overlapping reservation on the same room yields ErrConflict.
func (s *BookingService) Create(ctx context.Context, actor Principal, roomID, date, startTime string) (created Booking, err error) {
	logger := s.loggerWith(ctx, "Create", "user_id", actor.UserID, "room_id", roomID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking create failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", created.ID).InfoContext(ctx, "booking created")
	}()

	vErr := &ValidationError{}
	if roomID == "" {
		vErr.add("roomId", "room is required")
	}
	if date == "" {
		vErr.add("date", "date is required")
	}
	if startTime == "" {
		vErr.add("time", "start time is required")
	} else if !booking.ValidSlotTime(startTime) {
		vErr.add("time", fmt.Sprintf("%q is not an available slot time", startTime))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	start, end, composeErr := booking.ComposeSlot(date, startTime, s.loc)
	if composeErr != nil {
		vErr.add("date", "date or time is malformed")
		err = vErr
		return
	}

	room, roomErr := s.rooms.GetRoom(ctx, roomID)
	if roomErr != nil {
		if errors.Is(roomErr, persistence.ErrNotFound) {
			err = ErrNotFound
			return
		}
		err = roomErr
		return
	}

	overlapping, listErr := s.bookings.ListOverlapping(ctx, roomID, start, end)
	if listErr != nil {
		err = listErr
		return
	}
	if len(overlapping) > 0 {
		err = ErrConflict
		return
	}

	record := persistence.Booking{
		ID:        s.idGenerator(),
		RoomID:    roomID,
		BookedBy:  actor.UserID,
		Start:     start,
		End:       end,
		CreatedAt: s.now(),
	}
	if createErr := s.bookings.CreateBooking(ctx, record); createErr != nil {
		// Two writers can pass the overlap check together; the unique
		// constraint on (room, start) breaks the tie.
		if errors.Is(createErr, persistence.ErrSlotTaken) {
			err = ErrConflict
			return
		}
		err = createErr
		return
	}

	s.notifier.Send(ctx, actor.Email, "Booking Confirmed",
		fmt.Sprintf("<p>Dear %s,</p><p>Your booking of <b>%s</b> on %s from %s to %s is confirmed.</p>",
			actor.Name, room.Name, start.Format("2006-01-02"), start.Format("15:04"), end.Format("15:04")))

	created = Booking{
		ID:        record.ID,
		Room:      roomFromRecord(room),
		BookedBy:  UserSummary{ID: actor.UserID, Name: actor.Name, Email: actor.Email, Role: actor.Role},
		Start:     start,
		End:       end,
		CreatedAt: record.CreatedAt,
	}
	return
}

// Cancel deletes a booking the policy engine allows the actor to cancel.
// When the canceller is not the owner, the owner's notification names them.
func (s *BookingService) Cancel(ctx context.Context, actor Principal, bookingID string) error {
	logger := s.loggerWith(ctx, "Cancel", "user_id", actor.UserID, "booking_id", bookingID)

	record, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	owner, err := s.users.GetUser(ctx, record.BookedBy)
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return err
	}
	ownerActor := policy.Actor{ID: owner.ID, Role: policy.ParseRole(owner.Role)}

	if !policy.CanCancelBooking(actor.Actor(), ownerActor) {
		logger.ErrorContext(ctx, "booking cancel denied", "error_kind", "forbidden", "owner_id", owner.ID)
		return ErrForbidden
	}

	if err := s.bookings.DeleteBooking(ctx, bookingID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if owner.Email != "" {
		message := fmt.Sprintf("<p>Dear %s,</p><p>Your booking on %s from %s to %s has been cancelled.</p>",
			displayName(owner), record.Start.Format("2006-01-02"), record.Start.Format("15:04"), record.End.Format("15:04"))
		if actor.UserID != owner.ID {
			message = fmt.Sprintf("<p>Dear %s,</p><p>Your booking on %s from %s to %s has been cancelled by %s.</p>",
				displayName(owner), record.Start.Format("2006-01-02"), record.Start.Format("15:04"), record.End.Format("15:04"), actor.Name)
		}
		s.notifier.Send(ctx, owner.Email, "Booking Cancelled", message)
	}

	logger.InfoContext(ctx, "booking cancelled", "owner_id", owner.ID)
	return nil
}

// List returns every booking with its room and owner resolved.
func (s *BookingService) List(ctx context.Context) ([]Booking, error) {
	records, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{})
	if err != nil {
		return nil, err
	}

	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	roomsByID := make(map[string]persistence.Room, len(rooms))
	for _, room := range rooms {
		roomsByID[room.ID] = room
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	usersByID := make(map[string]persistence.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	bookings := make([]Booking, 0, len(records))
	for _, record := range records {
		b := Booking{
			ID:        record.ID,
			Room:      roomFromRecord(roomsByID[record.RoomID]),
			Start:     record.Start,
			End:       record.End,
			CreatedAt: record.CreatedAt,
		}
		if owner, ok := usersByID[record.BookedBy]; ok {
			b.BookedBy = summaryFromRecord(owner)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func summaryFromRecord(record persistence.User) UserSummary {
	return UserSummary{
		ID:    record.ID,
		Name:  record.Name,
		Email: record.Email,
		Role:  policy.ParseRole(record.Role),
	}
}
