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

// EnsureSuperAdmin makes sure a SuperAdmin account exists for the given
// email, creating it with the given password when absent. Existing accounts
// are left untouched.
func EnsureSuperAdmin(ctx context.Context, users persistence.UserRepository, email, password string, idGenerator func() string, now func() time.Time, logger *slog.Logger) error {
	if email == "" || password == "" {
		return nil
	}
	if idGenerator == nil {
		idGenerator = func() string { return randomHex(16) }
	}
	if now == nil {
		now = time.Now
	}
	logger = defaultLogger(logger)

	email = normalizeEmail(email)
	_, err := users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("seed superadmin: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("seed superadmin: %w", err)
	}

	ts := now()
	record := persistence.User{
		ID:           idGenerator(),
		Name:         "Super Admin",
		Email:        email,
		Role:         policy.RoleSuperAdmin.String(),
		PasswordHash: hash,
		Status:       string(UserStatusActive),
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if err := users.CreateUser(ctx, record); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("seed superadmin: %w", err)
	}

	logger.InfoContext(ctx, "default superadmin created", "email", email)
	return nil
}
