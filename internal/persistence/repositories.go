package persistence

import (
	"context"
	"time"
)

// UserRepository exposes CRUD operations for portal accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByResetToken(ctx context.Context, token string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// BookingFilter narrows booking queries.
type BookingFilter struct {
	RoomID   string
	BookedBy string
}

// BookingRepository stores room reservations.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	// ListOverlapping returns bookings for the room whose [start, end)
	// interval intersects the candidate window.
	ListOverlapping(ctx context.Context, roomID string, start, end time.Time) ([]Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// RoomRepository exposes CRUD operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// TaskFilter narrows task queries.
type TaskFilter struct {
	AssignedTo string
	AssignedBy string
}

// TaskRepository stores assigned work items.
type TaskRepository interface {
	CreateTask(ctx context.Context, task Task) error
	UpdateTask(ctx context.Context, task Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// IssueFilter narrows issue queries.
type IssueFilter struct {
	Status   string
	Priority string
	RaisedBy string
}

// IssueRepository stores reported issues and their comments.
type IssueRepository interface {
	CreateIssue(ctx context.Context, issue Issue) error
	UpdateIssueStatus(ctx context.Context, id, status string) (Issue, error)
	AddComment(ctx context.Context, comment IssueComment) (Issue, error)
	GetIssue(ctx context.Context, id string) (Issue, error)
	ListIssues(ctx context.Context, filter IssueFilter) ([]Issue, error)
	DeleteIssue(ctx context.Context, id string) error
}

// CalendarRepository stores shared calendar events.
type CalendarRepository interface {
	CreateEvent(ctx context.Context, event CalendarEvent) error
	UpdateEvent(ctx context.Context, event CalendarEvent) error
	GetEvent(ctx context.Context, id string) (CalendarEvent, error)
	ListEvents(ctx context.Context) ([]CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) error
}

// AnnouncementRepository stores portal-wide notices.
type AnnouncementRepository interface {
	CreateAnnouncement(ctx context.Context, announcement Announcement) error
	ListAnnouncements(ctx context.Context) ([]Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error
}

// PollRepository stores polls, options, and per-user votes.
type PollRepository interface {
	CreatePoll(ctx context.Context, poll Poll) error
	GetPoll(ctx context.Context, id string) (Poll, error)
	ListPolls(ctx context.Context) ([]Poll, error)
	// RecordVote increments the option's count. A second vote by the same
	// user on the same poll returns ErrDuplicate.
	RecordVote(ctx context.Context, pollID, optionID, userID string) (Poll, error)
	DeletePoll(ctx context.Context, id string) error
}
