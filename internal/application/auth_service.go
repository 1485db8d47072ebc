package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/example/employee-portal/internal/auth"
	"github.com/example/employee-portal/internal/persistence"
	"github.com/example/employee-portal/internal/policy"
)

const (
	signupOTPValidity = 10 * time.Minute
	resetOTPValidity  = 10 * time.Minute
	resetLinkValidity = 15 * time.Minute
)

// AuthService coordinates account onboarding, login, and credential
// recovery flows.
type AuthService struct {
	users        persistence.UserRepository
	notifier     Notifier
	jwtSecret    string
	idGenerator  func() string
	otpGenerator func() string
	tokenGen     func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewAuthService wires dependencies for the auth service. Nil generators
// fall back to crypto/rand based defaults.
func NewAuthService(users persistence.UserRepository, notifier Notifier, jwtSecret string, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AuthService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if idGenerator == nil {
		idGenerator = func() string { return randomHex(16) }
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:        users,
		notifier:     notifier,
		jwtSecret:    jwtSecret,
		idGenerator:  idGenerator,
		otpGenerator: randomOTP,
		tokenGen:     func() string { return randomHex(32) },
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// WithGenerators overrides the OTP and reset-token generators. Intended for
// tests that need deterministic codes.
func (s *AuthService) WithGenerators(otp, token func() string) *AuthService {
	if otp != nil {
		s.otpGenerator = otp
	}
	if token != nil {
		s.tokenGen = token
	}
	return s
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// SendSignupOTP starts onboarding: it creates or refreshes a pending account
// and emails a one-time code valid for ten minutes. Accounts that already
// hold a password are rejected with ErrConflict.
func (s *AuthService) SendSignupOTP(ctx context.Context, email, name string) error {
	email = normalizeEmail(email)
	logger := s.loggerWith(ctx, "SendSignupOTP", "email", email)

	vErr := &ValidationError{}
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "email is invalid")
	}
	if vErr.HasErrors() {
		return vErr
	}

	now := s.now()
	otp := s.otpGenerator()
	expires := now.Add(signupOTPValidity)

	record, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if record.PasswordHash != "" {
			logger.ErrorContext(ctx, "signup rejected for existing account", "error_kind", "conflict")
			return ErrConflict
		}
		// A fresh request overwrites any previous code.
		record.SignupOTP = &otp
		record.SignupOTPExpires = &expires
		record.OTPVerified = false
		if name != "" {
			record.Name = name
		}
		record.UpdatedAt = now
		if err := s.users.UpdateUser(ctx, record); err != nil {
			return err
		}
	case errors.Is(err, persistence.ErrNotFound):
		record = persistence.User{
			ID:               s.idGenerator(),
			Name:             name,
			Email:            email,
			Role:             policy.RoleEmployee.String(),
			Status:           string(UserStatusPending),
			SignupOTP:        &otp,
			SignupOTPExpires: &expires,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.users.CreateUser(ctx, record); err != nil {
			if errors.Is(err, persistence.ErrDuplicate) {
				return ErrConflict
			}
			return err
		}
	default:
		return err
	}

	s.notifier.Send(ctx, email, "Your Signup OTP",
		fmt.Sprintf("<p>Your OTP for signup is:</p><p><b>%s</b></p><p>This OTP is valid for 10 minutes. If you did not request this, please ignore this email.</p>", otp))

	logger.InfoContext(ctx, "signup otp issued", "user_id", record.ID)
	return nil
}

// VerifySignupOTP checks the submitted code and marks the account eligible
// to set a password.
func (s *AuthService) VerifySignupOTP(ctx context.Context, email, otp string) error {
	email = normalizeEmail(email)
	logger := s.loggerWith(ctx, "VerifySignupOTP", "email", email)

	record, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrOTPInvalid
		}
		return err
	}

	if record.SignupOTP == nil || *record.SignupOTP != strings.TrimSpace(otp) {
		return ErrOTPInvalid
	}
	if record.SignupOTPExpires == nil || !record.SignupOTPExpires.After(s.now()) {
		return ErrOTPInvalid
	}

	record.SignupOTP = nil
	record.SignupOTPExpires = nil
	record.OTPVerified = true
	record.UpdatedAt = s.now()
	if err := s.users.UpdateUser(ctx, record); err != nil {
		return err
	}

	logger.InfoContext(ctx, "signup otp verified", "user_id", record.ID)
	return nil
}

// CompleteSignup sets the account's password after OTP verification and
// sends the welcome email. Re-running it for an account that already holds
// a password fails with ErrConflict.
func (s *AuthService) CompleteSignup(ctx context.Context, email, name, password string) error {
	email = normalizeEmail(email)
	logger := s.loggerWith(ctx, "CompleteSignup", "email", email)

	vErr := &ValidationError{}
	if password == "" {
		vErr.add("password", "password is required")
	}
	if vErr.HasErrors() {
		return vErr
	}

	record, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrOTPInvalid
		}
		return err
	}
	if !record.OTPVerified {
		return ErrOTPInvalid
	}
	if record.PasswordHash != "" {
		return ErrConflict
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	if name != "" {
		record.Name = name
	}
	record.PasswordHash = hash
	record.OTPVerified = false
	record.UpdatedAt = s.now()
	if err := s.users.UpdateUser(ctx, record); err != nil {
		return err
	}

	s.notifier.Send(ctx, email, "Welcome to the Portal",
		fmt.Sprintf("<p>Dear %s,</p><p>Your account has been created successfully. You can now log in and start using the portal.</p>", displayName(record)))

	logger.InfoContext(ctx, "signup completed", "user_id", record.ID)
	return nil
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

// Login verifies credentials and issues a signed bearer token embedding the
// user's identifier and role.
func (s *AuthService) Login(ctx context.Context, email, password string) (result LoginResult, err error) {
	email = normalizeEmail(email)
	logger := s.loggerWith(ctx, "Login", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "login succeeded")
	}()

	if email == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	record, lookupErr := s.users.GetUserByEmail(ctx, email)
	if lookupErr != nil {
		if errors.Is(lookupErr, persistence.ErrNotFound) {
			err = ErrNotFound
			return
		}
		err = lookupErr
		return
	}

	if verifyErr := VerifyPassword(record.PasswordHash, password); verifyErr != nil {
		err = ErrInvalidCredentials
		return
	}

	now := s.now()
	token, signErr := auth.MakeToken(record.ID, record.Role, s.jwtSecret, now)
	if signErr != nil {
		err = signErr
		return
	}

	result = LoginResult{
		Token:     token,
		ExpiresAt: now.Add(auth.TokenTTL),
		User:      userFromRecord(record),
	}
	return
}

// ResolvePrincipal verifies a bearer token and loads the acting user. The
// role always comes from the stored record, not the token, so role changes
// take effect before the token expires.
func (s *AuthService) ResolvePrincipal(ctx context.Context, rawToken string) (Principal, error) {
	claims, err := auth.ParseToken(rawToken, s.jwtSecret)
	if err != nil {
		return Principal{}, ErrUnauthorized
	}

	record, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, err
	}

	return principalFromRecord(record), nil
}

// Profile returns the acting user's account without credential fields.
func (s *AuthService) Profile(ctx context.Context, principal Principal) (User, error) {
	record, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return userFromRecord(record), nil
}

// SaveProfileImage persists the uploaded file's reference path against the
// acting user's profile.
func (s *AuthService) SaveProfileImage(ctx context.Context, principal Principal, imagePath string) (User, error) {
	if strings.TrimSpace(imagePath) == "" {
		vErr := &ValidationError{}
		vErr.add("image", "image path is required")
		return User{}, vErr
	}

	record, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	record.ImageURL = &imagePath
	record.UpdatedAt = s.now()
	if err := s.users.UpdateUser(ctx, record); err != nil {
		return User{}, err
	}
	return userFromRecord(record), nil
}

// ChangePassword replaces the acting user's password after verifying the
// old one, then sends a notification email.
func (s *AuthService) ChangePassword(ctx context.Context, principal Principal, oldPassword, newPassword string) error {
	logger := s.loggerWith(ctx, "ChangePassword", "user_id", principal.UserID)

	vErr := &ValidationError{}
	if newPassword == "" {
		vErr.add("newPassword", "new password is required")
	}
	if vErr.HasErrors() {
		return vErr
	}

	record, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := VerifyPassword(record.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	record.PasswordHash = hash
	record.UpdatedAt = s.now()
	if err := s.users.UpdateUser(ctx, record); err != nil {
		return err
	}

	s.notifier.Send(ctx, record.Email, "Your password was changed",
		"<p>Your password was just changed. If you did not perform this action, please contact support immediately.</p>")

	logger.InfoContext(ctx, "password changed")
	return nil
}

// ForgotPasswordOTP emails a reset code valid for ten minutes. A fresh
// request overwrites any outstanding code.
func (s *AuthService) ForgotPasswordOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	logger := s.loggerWith(ctx, "ForgotPasswordOTP", "email", email)

	record, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	now := s.now()
	otp := s.otpGenerator()
	expires := now.Add(resetOTPValidity)
	record.ResetOTP = &otp
	record.ResetOTPExpires = &expires
	record.UpdatedAt = now
	if err := s.users.UpdateUser(ctx, record); err != nil {
		return err
	}

	s.notifier.Send(ctx, email, "Your Password Reset OTP",
		fmt.Sprintf("<p>Your OTP for password reset is:</p><p><b>%s</b></p><p>This OTP is valid for 10 minutes. If you did not request this, please ignore this email.</p>", otp))

	logger.InfoContext(ctx, "reset otp issued", "user_id", record.ID)
	return nil
}

// ForgotPasswordLink emails a reset link token valid for fifteen minutes.
func (s *AuthService) ForgotPasswordLink(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	logger := s.loggerWith(ctx, "ForgotPasswordLink", "email", email)

	record, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	now := s.now()
	token := s.tokenGen()
	expires := now.Add(resetLinkValidity)
	record.ResetToken = &token
	record.ResetTokenExpires = &expires
	record.UpdatedAt = now
	if err := s.users.UpdateUser(ctx, record); err != nil {
		return err
	}

	s.notifier.Send(ctx, email, "Password Reset Link",
		fmt.Sprintf("<p>Use the token below to reset your password:</p><p><b>%s</b></p><p>This link is valid for 15 minutes. If you did not request this, please ignore this email.</p>", token))

	logger.InfoContext(ctx, "reset link issued", "user_id", record.ID)
	return nil
}

// ResetPasswordParams carries one of the two reset proofs plus the new
// password. Either Email+OTP or Token must be set.
type ResetPasswordParams struct {
	Email       string
	OTP         string
	Token       string
	NewPassword string
}

// ResetPassword completes a recovery flow started by ForgotPasswordOTP or
// ForgotPasswordLink, clearing the consumed proof.
func (s *AuthService) ResetPassword(ctx context.Context, params ResetPasswordParams) error {
	logger := s.loggerWith(ctx, "ResetPassword")

	vErr := &ValidationError{}
	if params.NewPassword == "" {
		vErr.add("newPassword", "new password is required")
	}
	if params.Token == "" && (params.Email == "" || params.OTP == "") {
		vErr.add("proof", "an OTP with email or a reset token is required")
	}
	if vErr.HasErrors() {
		return vErr
	}

	var (
		record persistence.User
		err    error
	)
	now := s.now()

	if params.OTP != "" && params.Email != "" {
		record, err = s.users.GetUserByEmail(ctx, normalizeEmail(params.Email))
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				return ErrOTPInvalid
			}
			return err
		}
		if record.ResetOTP == nil || *record.ResetOTP != strings.TrimSpace(params.OTP) {
			return ErrOTPInvalid
		}
		if record.ResetOTPExpires == nil || !record.ResetOTPExpires.After(now) {
			return ErrOTPInvalid
		}
		record.ResetOTP = nil
		record.ResetOTPExpires = nil
	} else {
		record, err = s.users.GetUserByResetToken(ctx, strings.TrimSpace(params.Token))
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				return ErrOTPInvalid
			}
			return err
		}
		if record.ResetTokenExpires == nil || !record.ResetTokenExpires.After(now) {
			return ErrOTPInvalid
		}
		record.ResetToken = nil
		record.ResetTokenExpires = nil
	}

	hash, err := HashPassword(params.NewPassword)
	if err != nil {
		return err
	}
	record.PasswordHash = hash
	record.UpdatedAt = now
	if err := s.users.UpdateUser(ctx, record); err != nil {
		return err
	}

	s.notifier.Send(ctx, record.Email, "Your password was changed",
		"<p>Your password was just changed using the password reset process. If you did not perform this action, please contact support immediately.</p>")

	logger.InfoContext(ctx, "password reset completed", "user_id", record.ID)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func displayName(record persistence.User) string {
	if record.Name != "" {
		return record.Name
	}
	return record.Email
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func randomOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
