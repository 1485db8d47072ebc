package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/employee-portal/internal/persistence"
	"github.com/example/employee-portal/internal/policy"
)

// IssueService tracks reported problems and their discussion threads.
type IssueService struct {
	issues      persistence.IssueRepository
	users       persistence.UserRepository
	notifier    Notifier
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

func NewIssueService(issues persistence.IssueRepository, users persistence.UserRepository, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *IssueService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if idGenerator == nil {
		idGenerator = func() string { return randomHex(16) }
	}
	if now == nil {
		now = time.Now
	}
	return &IssueService{issues: issues, users: users, notifier: notifier, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *IssueService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "IssueService", operation, attrs...)
}

// Raise files a new issue with status Pending and acknowledges the reporter
// by email.
func (s *IssueService) Raise(ctx context.Context, actor Principal, title, description, rawPriority string) (Issue, error) {
	logger := s.loggerWith(ctx, "Raise", "user_id", actor.UserID)

	vErr := &ValidationError{}
	if title == "" {
		vErr.add("title", "title is required")
	}
	priority := IssuePriorityMedium
	if rawPriority != "" {
		parsed, ok := ParseIssuePriority(rawPriority)
		if !ok {
			vErr.add("priority", fmt.Sprintf("unknown priority %q", rawPriority))
		} else {
			priority = parsed
		}
	}
	if vErr.HasErrors() {
		return Issue{}, vErr
	}

	now := s.now()
	record := persistence.Issue{
		ID:          s.idGenerator(),
		Title:       title,
		Description: description,
		Priority:    string(priority),
		Status:      string(IssuePending),
		RaisedBy:    actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.issues.CreateIssue(ctx, record); err != nil {
		return Issue{}, err
	}

	s.notifier.Send(ctx, actor.Email, "Issue Received",
		fmt.Sprintf("<p>Dear %s,</p><p>Your issue <b>%s</b> has been received and will be looked into.</p>", actor.Name, title))

	logger.InfoContext(ctx, "issue raised", "issue_id", record.ID, "priority", string(priority))
	return s.resolveIssue(ctx, record)
}

// IssueFilter narrows issue listings.
type IssueFilter struct {
	Status   string
	Priority string
}

// List returns issues visible to the actor. Employees and Admins see only
// the issues they raised; SuperAdmins see everything.
func (s *IssueService) List(ctx context.Context, actor Principal, filter IssueFilter) ([]Issue, error) {
	repoFilter := persistence.IssueFilter{}
	if actor.Role != policy.RoleSuperAdmin {
		repoFilter.RaisedBy = actor.UserID
	}
	if filter.Status != "" {
		status, ok := ParseIssueStatus(filter.Status)
		if !ok {
			vErr := &ValidationError{}
			vErr.add("status", fmt.Sprintf("unknown status %q", filter.Status))
			return nil, vErr
		}
		repoFilter.Status = string(status)
	}
	if filter.Priority != "" {
		priority, ok := ParseIssuePriority(filter.Priority)
		if !ok {
			vErr := &ValidationError{}
			vErr.add("priority", fmt.Sprintf("unknown priority %q", filter.Priority))
			return nil, vErr
		}
		repoFilter.Priority = string(priority)
	}

	records, err := s.issues.ListIssues(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	return s.resolveIssues(ctx, records)
}

// ListAll returns every issue regardless of reporter, for exports.
func (s *IssueService) ListAll(ctx context.Context) ([]Issue, error) {
	records, err := s.issues.ListIssues(ctx, persistence.IssueFilter{})
	if err != nil {
		return nil, err
	}
	return s.resolveIssues(ctx, records)
}

// UpdateStatus moves an issue along its lifecycle and notifies the reporter.
func (s *IssueService) UpdateStatus(ctx context.Context, actor Principal, issueID, rawStatus string) (Issue, error) {
	logger := s.loggerWith(ctx, "UpdateStatus", "user_id", actor.UserID, "issue_id", issueID)

	status, ok := ParseIssueStatus(rawStatus)
	if !ok {
		vErr := &ValidationError{}
		vErr.add("status", fmt.Sprintf("unknown status %q", rawStatus))
		return Issue{}, vErr
	}

	record, err := s.issues.UpdateIssueStatus(ctx, issueID, string(status))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Issue{}, ErrNotFound
		}
		return Issue{}, err
	}

	if reporter, lookupErr := s.users.GetUser(ctx, record.RaisedBy); lookupErr == nil {
		s.notifier.Send(ctx, reporter.Email, "Issue Status Updated",
			fmt.Sprintf("<p>Dear %s,</p><p>The status of your issue <b>%s</b> is now <b>%s</b>.</p>", displayName(reporter), record.Title, status))
	}

	logger.InfoContext(ctx, "issue status updated", "status", string(status))
	return s.resolveIssue(ctx, record)
}

// AddComment appends a comment to an issue's thread.
func (s *IssueService) AddComment(ctx context.Context, actor Principal, issueID, text string) (Issue, error) {
	if text == "" {
		vErr := &ValidationError{}
		vErr.add("text", "comment text is required")
		return Issue{}, vErr
	}

	comment := persistence.IssueComment{
		ID:        s.idGenerator(),
		IssueID:   issueID,
		Text:      text,
		CreatedBy: actor.UserID,
		CreatedAt: s.now(),
	}
	record, err := s.issues.AddComment(ctx, comment)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Issue{}, ErrNotFound
		}
		return Issue{}, err
	}
	return s.resolveIssue(ctx, record)
}

// Delete removes an issue and its thread.
func (s *IssueService) Delete(ctx context.Context, actor Principal, issueID string) error {
	logger := s.loggerWith(ctx, "Delete", "user_id", actor.UserID, "issue_id", issueID)

	if err := s.issues.DeleteIssue(ctx, issueID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	logger.InfoContext(ctx, "issue deleted")
	return nil
}

func (s *IssueService) resolveIssue(ctx context.Context, record persistence.Issue) (Issue, error) {
	issues, err := s.resolveIssues(ctx, []persistence.Issue{record})
	if err != nil {
		return Issue{}, err
	}
	return issues[0], nil
}

func (s *IssueService) resolveIssues(ctx context.Context, records []persistence.Issue) ([]Issue, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	usersByID := make(map[string]persistence.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	issues := make([]Issue, 0, len(records))
	for _, record := range records {
		issue := Issue{
			ID:          record.ID,
			Title:       record.Title,
			Description: record.Description,
			Priority:    IssuePriority(record.Priority),
			Status:      IssueStatus(record.Status),
			CreatedAt:   record.CreatedAt,
			UpdatedAt:   record.UpdatedAt,
		}
		if reporter, ok := usersByID[record.RaisedBy]; ok {
			issue.RaisedBy = summaryFromRecord(reporter)
		}
		for _, comment := range record.Comments {
			c := IssueComment{ID: comment.ID, Text: comment.Text, CreatedAt: comment.CreatedAt}
			if author, ok := usersByID[comment.CreatedBy]; ok {
				c.CreatedBy = summaryFromRecord(author)
			}
			issue.Comments = append(issue.Comments, c)
		}
		issues = append(issues, issue)
	}
	return issues, nil
}
