package persistence

import "time"

// User represents a portal account row. Role and Status are stored as the
// canonical strings produced by the policy package; transient credential
// fields are nil when no flow is in progress.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         string
	PasswordHash string
	Status       string
	ImageURL     *string

	SignupOTP        *string
	SignupOTPExpires *time.Time
	OTPVerified      bool

	ResetToken        *string
	ResetTokenExpires *time.Time
	ResetOTP          *string
	ResetOTPExpires   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Room represents a bookable meeting room.
type Room struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Booking represents a reserved 60-minute room slot.
type Booking struct {
	ID        string
	RoomID    string
	BookedBy  string
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
}

// Task represents an assigned work item.
type Task struct {
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

// Issue represents a reported problem with its discussion thread.
type Issue struct {
	ID          string
	Title       string
	Description string
	Priority    string
	Status      string
	RaisedBy    string
	Comments    []IssueComment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IssueComment is a single entry in an issue's comment thread.
type IssueComment struct {
	ID        string
	IssueID   string
	Text      string
	CreatedBy string
	CreatedAt time.Time
}

// CalendarEvent represents a shared calendar entry.
type CalendarEvent struct {
	ID          string
	Title       string
	Description string
	Date        time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Announcement represents a portal-wide notice.
type Announcement struct {
	ID        string
	Title     string
	Body      string
	PostedBy  string
	CreatedAt time.Time
}

// Poll represents a question with voting options.
type Poll struct {
	ID        string
	Question  string
	Options   []PollOption
	CreatedBy string
	CreatedAt time.Time
}

// PollOption is a single poll choice with its accumulated vote count.
type PollOption struct {
	ID     string
	PollID string
	Text   string
	Votes  int
}
