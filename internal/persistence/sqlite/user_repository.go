package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/employee-portal/internal/persistence"
)

// UserRepository implements persistence.UserRepository over SQLite.
type UserRepository struct {
	store *Store
}

// NewUserRepository returns a user repository backed by the store.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

const userColumns = `id, name, email, role, password_hash, status, image_url,
	signup_otp, signup_otp_expires, otp_verified,
	reset_token, reset_token_expires, reset_otp, reset_otp_expires,
	created_at, updated_at`

// CreateUser inserts a new account row. A duplicate email yields ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.store.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.Role,
		user.PasswordHash,
		user.Status,
		encodeStringPtr(user.ImageURL),
		encodeStringPtr(user.SignupOTP),
		encodeTimePtr(user.SignupOTPExpires),
		user.OTPVerified,
		encodeStringPtr(user.ResetToken),
		encodeTimePtr(user.ResetTokenExpires),
		encodeStringPtr(user.ResetOTP),
		encodeTimePtr(user.ResetOTPExpires),
		encodeTime(user.CreatedAt),
		encodeTime(user.UpdatedAt),
	)
	return mapError(err)
}

// UpdateUser rewrites every mutable column of an existing account row.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	query := `
		UPDATE users
		SET name = ?, email = ?, role = ?, password_hash = ?, status = ?, image_url = ?,
			signup_otp = ?, signup_otp_expires = ?, otp_verified = ?,
			reset_token = ?, reset_token_expires = ?, reset_otp = ?, reset_otp_expires = ?,
			updated_at = ?
		WHERE id = ?
	`
	result, err := r.store.db.ExecContext(ctx, query,
		user.Name,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.Role,
		user.PasswordHash,
		user.Status,
		encodeStringPtr(user.ImageURL),
		encodeStringPtr(user.SignupOTP),
		encodeTimePtr(user.SignupOTPExpires),
		user.OTPVerified,
		encodeStringPtr(user.ResetToken),
		encodeTimePtr(user.ResetTokenExpires),
		encodeStringPtr(user.ResetOTP),
		encodeTimePtr(user.ResetOTPExpires),
		encodeTime(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetUser retrieves an account by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	row := r.store.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves an account by its lowercased email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	)
	return scanUser(row)
}

// GetUserByResetToken retrieves the account holding the given reset token.
func (r *UserRepository) GetUserByResetToken(ctx context.Context, token string) (persistence.User, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token = ?`, token)
	return scanUser(row)
}

// ListUsers returns all accounts ordered by creation time.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (persistence.User, error) {
	var (
		user             persistence.User
		imageURL         sql.NullString
		signupOTP        sql.NullString
		signupOTPExpires sql.NullString
		resetToken       sql.NullString
		resetTokenExp    sql.NullString
		resetOTP         sql.NullString
		resetOTPExp      sql.NullString
		createdAt        string
		updatedAt        string
	)

	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.PasswordHash, &user.Status,
		&imageURL,
		&signupOTP, &signupOTPExpires, &user.OTPVerified,
		&resetToken, &resetTokenExp, &resetOTP, &resetOTPExp,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return persistence.User{}, mapError(err)
	}

	user.ImageURL = decodeStringPtr(imageURL)
	user.SignupOTP = decodeStringPtr(signupOTP)
	user.ResetToken = decodeStringPtr(resetToken)
	user.ResetOTP = decodeStringPtr(resetOTP)

	if user.SignupOTPExpires, err = decodeTimePtr(signupOTPExpires); err != nil {
		return persistence.User{}, err
	}
	if user.ResetTokenExpires, err = decodeTimePtr(resetTokenExp); err != nil {
		return persistence.User{}, err
	}
	if user.ResetOTPExpires, err = decodeTimePtr(resetOTPExp); err != nil {
		return persistence.User{}, err
	}
	if user.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.User{}, err
	}

	return user, nil
}
