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

// UserService exposes the account directory and role administration.
type UserService struct {
	users    persistence.UserRepository
	notifier Notifier
	now      func() time.Time
	logger   *slog.Logger
}

func NewUserService(users persistence.UserRepository, notifier Notifier, now func() time.Time, logger *slog.Logger) *UserService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, notifier: notifier, now: now, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// List returns the full directory, credential fields stripped.
func (s *UserService) List(ctx context.Context) ([]User, error) {
	records, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(records))
	for _, record := range records {
		users = append(users, userFromRecord(record))
	}
	return users, nil
}

// Get returns a single account by identifier.
func (s *UserService) Get(ctx context.Context, id string) (User, error) {
	record, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return userFromRecord(record), nil
}

// UpdateRole changes a user's role. Only a SuperAdmin may do this; the
// target account is activated and notified by email.
func (s *UserService) UpdateRole(ctx context.Context, actor Principal, targetID, newRole string) (User, error) {
	logger := s.loggerWith(ctx, "UpdateRole", "actor_id", actor.UserID, "target_id", targetID)

	if actor.Role != policy.RoleSuperAdmin {
		logger.ErrorContext(ctx, "role change denied", "error_kind", "forbidden")
		return User{}, ErrForbidden
	}

	role := policy.ParseRole(newRole)
	if !role.Valid() {
		vErr := &ValidationError{}
		vErr.add("role", fmt.Sprintf("unknown role %q", newRole))
		return User{}, vErr
	}

	record, err := s.users.GetUser(ctx, targetID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	record.Role = role.String()
	record.Status = string(UserStatusActive)
	record.UpdatedAt = s.now()
	if err := s.users.UpdateUser(ctx, record); err != nil {
		return User{}, err
	}

	s.notifier.Send(ctx, record.Email, "Your role has been updated",
		fmt.Sprintf("<p>Dear %s,</p><p>Your role on the portal has been updated to <b>%s</b>.</p>", displayName(record), role))

	logger.InfoContext(ctx, "role updated", "role", role.String())
	return userFromRecord(record), nil
}
