// Package testfixtures provides deterministic builders for portal entities
// used by persistence and transport tests.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/employee-portal/internal/application"
	"github.com/example/employee-portal/internal/persistence"
	"github.com/example/employee-portal/internal/policy"
)

var (
	userCounter    uint64
	roomCounter    uint64
	bookingCounter uint64
	taskCounter    uint64
	issueCounter   uint64
	pollCounter    uint64
)

var referenceTime = time.Date(2025, time.June, 26, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic portal account record.
type UserFixture struct {
	ID           string
	Name         string
	Email        string
	Role         policy.Role
	PasswordHash string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Name:         fmt.Sprintf("User %03d", idx),
		Email:        fmt.Sprintf("%s@example.com", id),
		Role:         policy.RoleEmployee,
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Status:       "active",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserName overrides the generated display name.
func WithUserName(name string) UserOption {
	return func(f *UserFixture) {
		f.Name = name
	}
}

// WithUserRole sets the role on the generated fixture.
func WithUserRole(role policy.Role) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserStatus sets the account status.
func WithUserStatus(status string) UserOption {
	return func(f *UserFixture) {
		f.Status = status
	}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Name:         f.Name,
		Email:        f.Email,
		Role:         f.Role.String(),
		PasswordHash: f.PasswordHash,
		Status:       f.Status,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{
		UserID: f.ID,
		Name:   f.Name,
		Email:  f.Email,
		Role:   f.Role,
	}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic meeting room record.
type RoomFixture struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	id := fmt.Sprintf("room-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := RoomFixture{
		ID:        id,
		Name:      fmt.Sprintf("Room %03d", idx),
		Location:  "Main Office",
		Capacity:  int(4 + idx%4),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// --------------------------- Booking fixtures ----------------------------

// BookingFixture represents a deterministic reservation record.
type BookingFixture struct {
	ID       string
	RoomID   string
	BookedBy string
	Start    time.Time
	End      time.Time
	Created  time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic booking fixture. Successive
// fixtures occupy successive one-hour slots so they never collide unless a
// test asks them to.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := BookingFixture{
		ID:       fmt.Sprintf("booking-%03d", idx),
		RoomID:   fmt.Sprintf("room-%03d", idx),
		BookedBy: fmt.Sprintf("user-%03d", idx),
		Start:    start,
		End:      start.Add(time.Hour),
		Created:  referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingRoom sets the room ID.
func WithBookingRoom(roomID string) BookingOption {
	return func(f *BookingFixture) {
		f.RoomID = roomID
	}
}

// WithBookingUser sets the booking owner.
func WithBookingUser(userID string) BookingOption {
	return func(f *BookingFixture) {
		f.BookedBy = userID
	}
}

// WithBookingSlot sets the start time; the end follows one hour later.
func WithBookingSlot(start time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.Start = start
		f.End = start.Add(time.Hour)
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:        f.ID,
		RoomID:    f.RoomID,
		BookedBy:  f.BookedBy,
		Start:     f.Start,
		End:       f.End,
		CreatedAt: f.Created,
	}
}

// ----------------------------- Task fixtures -----------------------------

// TaskFixture represents a deterministic assigned work item.
type TaskFixture struct {
	ID          string
	Title       string
	Description string
	AssignedTo  string
	AssignedBy  string
	DueDate     *time.Time
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskOption configures the generated task fixture.
type TaskOption func(*TaskFixture)

// NewTaskFixture returns a deterministic task fixture with optional overrides.
func NewTaskFixture(opts ...TaskOption) TaskFixture {
	idx := atomic.AddUint64(&taskCounter, 1)
	fixture := TaskFixture{
		ID:         fmt.Sprintf("task-%03d", idx),
		Title:      fmt.Sprintf("Task %03d", idx),
		AssignedTo: fmt.Sprintf("user-%03d", idx),
		AssignedBy: fmt.Sprintf("user-%03d", idx+1),
		Status:     "Open",
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTaskID overrides the task ID.
func WithTaskID(id string) TaskOption {
	return func(f *TaskFixture) {
		f.ID = id
	}
}

// WithTaskAssignee sets the assignee user ID.
func WithTaskAssignee(userID string) TaskOption {
	return func(f *TaskFixture) {
		f.AssignedTo = userID
	}
}

// WithTaskAssigner sets the assigner user ID.
func WithTaskAssigner(userID string) TaskOption {
	return func(f *TaskFixture) {
		f.AssignedBy = userID
	}
}

// WithTaskStatus sets the task status string.
func WithTaskStatus(status string) TaskOption {
	return func(f *TaskFixture) {
		f.Status = status
	}
}

// WithTaskDueDate sets the optional due date.
func WithTaskDueDate(t time.Time) TaskOption {
	return func(f *TaskFixture) {
		due := t
		f.DueDate = &due
	}
}

// Persistence returns the fixture as a persistence.Task value.
func (f TaskFixture) Persistence() persistence.Task {
	var due *time.Time
	if f.DueDate != nil {
		d := *f.DueDate
		due = &d
	}
	return persistence.Task{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		AssignedTo:  f.AssignedTo,
		AssignedBy:  f.AssignedBy,
		DueDate:     due,
		Status:      f.Status,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ----------------------------- Issue fixtures ----------------------------

// IssueFixture represents a deterministic reported issue.
type IssueFixture struct {
	ID          string
	Title       string
	Description string
	Priority    string
	Status      string
	RaisedBy    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IssueOption configures the generated issue fixture.
type IssueOption func(*IssueFixture)

// NewIssueFixture returns a deterministic issue fixture with optional overrides.
func NewIssueFixture(opts ...IssueOption) IssueFixture {
	idx := atomic.AddUint64(&issueCounter, 1)
	fixture := IssueFixture{
		ID:        fmt.Sprintf("issue-%03d", idx),
		Title:     fmt.Sprintf("Issue %03d", idx),
		Priority:  "Medium",
		Status:    "Pending",
		RaisedBy:  fmt.Sprintf("user-%03d", idx),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithIssueID overrides the issue ID.
func WithIssueID(id string) IssueOption {
	return func(f *IssueFixture) {
		f.ID = id
	}
}

// WithIssueReporter sets the reporter user ID.
func WithIssueReporter(userID string) IssueOption {
	return func(f *IssueFixture) {
		f.RaisedBy = userID
	}
}

// WithIssuePriority sets the priority string.
func WithIssuePriority(priority string) IssueOption {
	return func(f *IssueFixture) {
		f.Priority = priority
	}
}

// WithIssueStatus sets the status string.
func WithIssueStatus(status string) IssueOption {
	return func(f *IssueFixture) {
		f.Status = status
	}
}

// Persistence returns the fixture as a persistence.Issue value.
func (f IssueFixture) Persistence() persistence.Issue {
	return persistence.Issue{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Priority:    f.Priority,
		Status:      f.Status,
		RaisedBy:    f.RaisedBy,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ----------------------------- Poll fixtures -----------------------------

// PollFixture represents a deterministic poll with two options.
type PollFixture struct {
	ID        string
	Question  string
	Options   []persistence.PollOption
	CreatedBy string
	CreatedAt time.Time
}

// PollOption configures the generated poll fixture.
type PollFixtureOption func(*PollFixture)

// NewPollFixture returns a deterministic poll fixture with two options.
func NewPollFixture(opts ...PollFixtureOption) PollFixture {
	idx := atomic.AddUint64(&pollCounter, 1)
	id := fmt.Sprintf("poll-%03d", idx)
	fixture := PollFixture{
		ID:       id,
		Question: fmt.Sprintf("Question %03d?", idx),
		Options: []persistence.PollOption{
			{ID: id + "-opt-1", PollID: id, Text: "Yes"},
			{ID: id + "-opt-2", PollID: id, Text: "No"},
		},
		CreatedBy: fmt.Sprintf("user-%03d", idx),
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithPollCreator sets the poll creator user ID.
func WithPollCreator(userID string) PollFixtureOption {
	return func(f *PollFixture) {
		f.CreatedBy = userID
	}
}

// Persistence returns the fixture as a persistence.Poll value.
func (f PollFixture) Persistence() persistence.Poll {
	return persistence.Poll{
		ID:        f.ID,
		Question:  f.Question,
		Options:   append([]persistence.PollOption(nil), f.Options...),
		CreatedBy: f.CreatedBy,
		CreatedAt: f.CreatedAt,
	}
}
