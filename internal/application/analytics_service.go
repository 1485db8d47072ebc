package application

import (
	"context"
	"log/slog"

	"github.com/example/employee-portal/internal/persistence"
)

// AnalyticsService aggregates per-user and org-wide counts for the
// dashboards.
type AnalyticsService struct {
	bookings persistence.BookingRepository
	tasks    persistence.TaskRepository
	issues   persistence.IssueRepository
	users    persistence.UserRepository
	logger   *slog.Logger
}

func NewAnalyticsService(bookings persistence.BookingRepository, tasks persistence.TaskRepository, issues persistence.IssueRepository, users persistence.UserRepository, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{bookings: bookings, tasks: tasks, issues: issues, users: users, logger: defaultLogger(logger)}
}

// EmployeeStats counts the acting user's own activity.
type EmployeeStats struct {
	Bookings       int
	TasksAssigned  int
	TasksCompleted int
	IssuesRaised   int
	IssuesResolved int
}

// OrgStats counts activity across the whole portal.
type OrgStats struct {
	Users          int
	Bookings       int
	Tasks          int
	TasksCompleted int
	Issues         int
	IssuesResolved int
	IssuesPending  int
}

// ForEmployee returns the acting user's personal dashboard counts.
func (s *AnalyticsService) ForEmployee(ctx context.Context, actor Principal) (EmployeeStats, error) {
	stats := EmployeeStats{}

	bookings, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{BookedBy: actor.UserID})
	if err != nil {
		return EmployeeStats{}, err
	}
	stats.Bookings = len(bookings)

	tasks, err := s.tasks.ListTasks(ctx, persistence.TaskFilter{AssignedTo: actor.UserID})
	if err != nil {
		return EmployeeStats{}, err
	}
	stats.TasksAssigned = len(tasks)
	for _, task := range tasks {
		if task.Status == string(TaskCompleted) {
			stats.TasksCompleted++
		}
	}

	issues, err := s.issues.ListIssues(ctx, persistence.IssueFilter{RaisedBy: actor.UserID})
	if err != nil {
		return EmployeeStats{}, err
	}
	stats.IssuesRaised = len(issues)
	for _, issue := range issues {
		if issue.Status == string(IssueResolved) {
			stats.IssuesResolved++
		}
	}
	return stats, nil
}

// ForOrg returns portal-wide counts for the admin dashboards.
func (s *AnalyticsService) ForOrg(ctx context.Context) (OrgStats, error) {
	stats := OrgStats{}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return OrgStats{}, err
	}
	stats.Users = len(users)

	bookings, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{})
	if err != nil {
		return OrgStats{}, err
	}
	stats.Bookings = len(bookings)

	tasks, err := s.tasks.ListTasks(ctx, persistence.TaskFilter{})
	if err != nil {
		return OrgStats{}, err
	}
	stats.Tasks = len(tasks)
	for _, task := range tasks {
		if task.Status == string(TaskCompleted) {
			stats.TasksCompleted++
		}
	}

	issues, err := s.issues.ListIssues(ctx, persistence.IssueFilter{})
	if err != nil {
		return OrgStats{}, err
	}
	stats.Issues = len(issues)
	for _, issue := range issues {
		switch issue.Status {
		case string(IssueResolved):
			stats.IssuesResolved++
		case string(IssuePending):
			stats.IssuesPending++
		}
	}
	return stats, nil
}
