package application

import (
	"strings"
	"time"

	"github.com/example/employee-portal/internal/persistence"
	"github.com/example/employee-portal/internal/policy"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Name   string
	Email  string
	Role   policy.Role
}

// Actor converts the principal into the policy engine's identity shape.
func (p Principal) Actor() policy.Actor {
	return policy.Actor{ID: p.UserID, Role: p.Role}
}

// UserStatus tracks whether an account has completed onboarding.
type UserStatus string

const (
	// UserStatusPending marks accounts created by the signup OTP flow that
	// have not yet been activated by a role assignment.
	UserStatusPending UserStatus = "pending"
	// UserStatusActive marks fully onboarded accounts.
	UserStatusActive UserStatus = "active"
)

// User is the portal account shape exposed by the services. Password hashes
// and transient credential fields never leave the application layer.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      policy.Role
	Status    UserStatus
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func userFromRecord(record persistence.User) User {
	user := User{
		ID:        record.ID,
		Name:      record.Name,
		Email:     record.Email,
		Role:      policy.ParseRole(record.Role),
		Status:    UserStatus(record.Status),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if record.ImageURL != nil {
		user.ImageURL = *record.ImageURL
	}
	return user
}

func principalFromRecord(record persistence.User) Principal {
	return Principal{
		UserID: record.ID,
		Name:   record.Name,
		Email:  record.Email,
		Role:   policy.ParseRole(record.Role),
	}
}

// Room is a bookable meeting room.
type Room struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func roomFromRecord(record persistence.Room) Room {
	return Room(record)
}

// UserSummary is the public slice of a user embedded in other entities.
type UserSummary struct {
	ID    string
	Name  string
	Email string
	Role  policy.Role
}

// Booking is a reserved 60-minute slot with its room and owner resolved.
type Booking struct {
	ID        string
	Room      Room
	BookedBy  UserSummary
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
}

// TaskStatus is the closed set of task lifecycle values.
type TaskStatus string

const (
	// TaskOpen is the initial status of an assigned task.
	TaskOpen TaskStatus = "Open"
	// TaskInProgress marks a task the assignee has started.
	TaskInProgress TaskStatus = "In Progress"
	// TaskCompleted marks a finished task.
	TaskCompleted TaskStatus = "Completed"
)

// ParseTaskStatus normalizes a submitted status string. The second return is
// false for values outside the closed set.
func ParseTaskStatus(raw string) (TaskStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "open", "pending":
		return TaskOpen, true
	case "in progress", "inprogress", "in-progress":
		return TaskInProgress, true
	case "completed", "complete", "done":
		return TaskCompleted, true
	default:
		return "", false
	}
}

// Task is an assigned work item with both parties resolved.
type Task struct {
	ID          string
	Title       string
	Description string
	AssignedTo  UserSummary
	AssignedBy  UserSummary
	DueDate     *time.Time
	Status      TaskStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IssuePriority is the closed set of issue priorities.
type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "Low"
	IssuePriorityMedium IssuePriority = "Medium"
	IssuePriorityHigh   IssuePriority = "High"
)

// ParseIssuePriority normalizes a submitted priority string.
func ParseIssuePriority(raw string) (IssuePriority, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return IssuePriorityLow, true
	case "medium":
		return IssuePriorityMedium, true
	case "high":
		return IssuePriorityHigh, true
	default:
		return "", false
	}
}

// IssueStatus is the closed set of issue lifecycle values.
type IssueStatus string

const (
	IssuePending    IssueStatus = "Pending"
	IssueInProgress IssueStatus = "In Progress"
	IssueResolved   IssueStatus = "Resolved"
)

// ParseIssueStatus normalizes a submitted issue status string.
func ParseIssueStatus(raw string) (IssueStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return IssuePending, true
	case "in progress", "inprogress", "in-progress":
		return IssueInProgress, true
	case "resolved":
		return IssueResolved, true
	default:
		return "", false
	}
}

// IssueComment is one entry in an issue's discussion thread.
type IssueComment struct {
	ID        string
	Text      string
	CreatedBy UserSummary
	CreatedAt time.Time
}

// Issue is a reported problem with its discussion thread.
type Issue struct {
	ID          string
	Title       string
	Description string
	Priority    IssuePriority
	Status      IssueStatus
	RaisedBy    UserSummary
	Comments    []IssueComment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CalendarEvent is a shared calendar entry.
type CalendarEvent struct {
	ID          string
	Title       string
	Description string
	Date        time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func eventFromRecord(record persistence.CalendarEvent) CalendarEvent {
	return CalendarEvent(record)
}

// Announcement is a portal-wide notice.
type Announcement struct {
	ID        string
	Title     string
	Body      string
	PostedBy  UserSummary
	CreatedAt time.Time
}

// PollOption is one poll choice with its vote count.
type PollOption struct {
	ID    string
	Text  string
	Votes int
}

// Poll is a question with voting options.
type Poll struct {
	ID        string
	Question  string
	Options   []PollOption
	CreatedBy string
	CreatedAt time.Time
}

func pollFromRecord(record persistence.Poll) Poll {
	poll := Poll{
		ID:        record.ID,
		Question:  record.Question,
		CreatedBy: record.CreatedBy,
		CreatedAt: record.CreatedAt,
	}
	for _, option := range record.Options {
		poll.Options = append(poll.Options, PollOption{ID: option.ID, Text: option.Text, Votes: option.Votes})
	}
	return poll
}
