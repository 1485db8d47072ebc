package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/employee-portal/internal/auth"
	"github.com/example/employee-portal/internal/persistence"
	"github.com/example/employee-portal/internal/policy"
)

const testSecret = "test-secret"

func testTime(t *testing.T, hour int) time.Time {
	t.Helper()
	return time.Date(2025, 6, 26, hour, 0, 0, 0, time.UTC)
}

func newTestAuthService(users *memUsers, notifier Notifier, now time.Time) *AuthService {
	svc := NewAuthService(users, notifier, testSecret, sequentialIDs("user"), fixedNow(now), nil)
	return svc.WithGenerators(func() string { return "123456" }, func() string { return "reset-token-1" })
}

func TestAuthService_SendSignupOTP_CreatesPendingUser(t *testing.T) {
	t.Parallel()

	users := newMemUsers()
	mails := &recordingNotifier{}
	svc := newTestAuthService(users, mails, testTime(t, 9))

	if err := svc.SendSignupOTP(context.Background(), "New.Person@Example.com", "New Person"); err != nil {
		t.Fatalf("SendSignupOTP failed: %v", err)
	}

	record, err := users.GetUserByEmail(context.Background(), "new.person@example.com")
	if err != nil {
		t.Fatalf("user was not created: %v", err)
	}
	if record.Status != "pending" {
		t.Errorf("expected pending status, got %q", record.Status)
	}
	if record.SignupOTP == nil || *record.SignupOTP != "123456" {
		t.Errorf("expected stored OTP, got %v", record.SignupOTP)
	}
	if record.Role != policy.RoleEmployee.String() {
		t.Errorf("expected Employee role, got %q", record.Role)
	}

	sent := mails.all()
	if len(sent) != 1 || sent[0].To != "new.person@example.com" {
		t.Fatalf("expected one OTP mail to the new user, got %+v", sent)
	}
}

func TestAuthService_SendSignupOTP_RejectsExistingAccount(t *testing.T) {
	t.Parallel()

	users := newMemUsers(persistence.User{ID: "u1", Email: "taken@example.com", PasswordHash: "x"})
	svc := newTestAuthService(users, nil, testTime(t, 9))

	err := svc.SendSignupOTP(context.Background(), "taken@example.com", "Taken")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAuthService_SendSignupOTP_RejectsBadEmail(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newMemUsers(), nil, testTime(t, 9))

	err := svc.SendSignupOTP(context.Background(), "not-an-email", "Nobody")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["email"]; !ok {
		t.Fatalf("expected email field error, got %v", vErr.FieldErrors)
	}
}

func TestAuthService_SignupFlow_EndToEnd(t *testing.T) {
	t.Parallel()

	users := newMemUsers()
	svc := newTestAuthService(users, nil, testTime(t, 9))
	ctx := context.Background()

	if err := svc.SendSignupOTP(ctx, "flow@example.com", "Flow"); err != nil {
		t.Fatalf("SendSignupOTP: %v", err)
	}
	if err := svc.VerifySignupOTP(ctx, "flow@example.com", "123456"); err != nil {
		t.Fatalf("VerifySignupOTP: %v", err)
	}
	if err := svc.CompleteSignup(ctx, "flow@example.com", "Flow", "secret-pw"); err != nil {
		t.Fatalf("CompleteSignup: %v", err)
	}

	result, err := svc.Login(ctx, "flow@example.com", "secret-pw")
	if err != nil {
		t.Fatalf("Login after signup: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}
	if result.User.Email != "flow@example.com" {
		t.Errorf("unexpected user in login result: %+v", result.User)
	}
}

func TestAuthService_VerifySignupOTP_Expired(t *testing.T) {
	t.Parallel()

	users := newMemUsers()
	issued := testTime(t, 9)
	svc := newTestAuthService(users, nil, issued)
	ctx := context.Background()

	if err := svc.SendSignupOTP(ctx, "late@example.com", "Late"); err != nil {
		t.Fatalf("SendSignupOTP: %v", err)
	}

	// Same store, clock moved past the ten minute window.
	lateSvc := newTestAuthService(users, nil, issued.Add(11*time.Minute))
	if err := lateSvc.VerifySignupOTP(ctx, "late@example.com", "123456"); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid for expired code, got %v", err)
	}
}

func TestAuthService_VerifySignupOTP_WrongCode(t *testing.T) {
	t.Parallel()

	users := newMemUsers()
	svc := newTestAuthService(users, nil, testTime(t, 9))
	ctx := context.Background()

	if err := svc.SendSignupOTP(ctx, "wrong@example.com", "Wrong"); err != nil {
		t.Fatalf("SendSignupOTP: %v", err)
	}
	if err := svc.VerifySignupOTP(ctx, "wrong@example.com", "999999"); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("right-pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := newMemUsers(persistence.User{
		ID:           "u1",
		Email:        "login@example.com",
		Role:         policy.RoleAdmin.String(),
		PasswordHash: hash,
	})
	svc := newTestAuthService(users, nil, testTime(t, 9))
	ctx := context.Background()

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "right-pw")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "login@example.com", "wrong-pw")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("success issues verifiable token", func(t *testing.T) {
		result, err := svc.Login(ctx, "login@example.com", "right-pw")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		claims, err := auth.ParseToken(result.Token, testSecret)
		if err != nil {
			t.Fatalf("issued token does not verify: %v", err)
		}
		if claims.UserID != "u1" || claims.Role != policy.RoleAdmin.String() {
			t.Errorf("unexpected claims: %+v", claims)
		}
	})
}

func TestAuthService_ResolvePrincipal_RoleFromStore(t *testing.T) {
	t.Parallel()

	users := newMemUsers(persistence.User{ID: "u1", Email: "p@example.com", Role: policy.RoleEmployee.String()})
	svc := newTestAuthService(users, nil, testTime(t, 9))
	ctx := context.Background()

	token, err := auth.MakeToken("u1", policy.RoleEmployee.String(), testSecret, testTime(t, 9))
	if err != nil {
		t.Fatalf("MakeToken: %v", err)
	}

	// role is re-read from the store, not trusted from the token
	record, _ := users.GetUser(ctx, "u1")
	record.Role = policy.RoleAdmin.String()
	if err := users.UpdateUser(ctx, record); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	principal, err := svc.ResolvePrincipal(ctx, token)
	if err != nil {
		t.Fatalf("ResolvePrincipal: %v", err)
	}
	if principal.Role != policy.RoleAdmin {
		t.Errorf("expected store role Admin, got %v", principal.Role)
	}
}

func TestAuthService_ResolvePrincipal_Rejections(t *testing.T) {
	t.Parallel()

	users := newMemUsers()
	svc := newTestAuthService(users, nil, testTime(t, 9))
	ctx := context.Background()

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ResolvePrincipal(ctx, "garbage")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("token for deleted user", func(t *testing.T) {
		token, err := auth.MakeToken("ghost", policy.RoleEmployee.String(), testSecret, testTime(t, 9))
		if err != nil {
			t.Fatalf("MakeToken: %v", err)
		}
		_, resolveErr := svc.ResolvePrincipal(ctx, token)
		if !errors.Is(resolveErr, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", resolveErr)
		}
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Parallel()

	hash, _ := HashPassword("old-pw")
	users := newMemUsers(persistence.User{ID: "u1", Email: "c@example.com", PasswordHash: hash})
	mails := &recordingNotifier{}
	svc := newTestAuthService(users, mails, testTime(t, 9))
	ctx := context.Background()
	principal := Principal{UserID: "u1", Email: "c@example.com"}

	t.Run("wrong old password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, principal, "bad", "new-pw")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		if err := svc.ChangePassword(ctx, principal, "old-pw", "new-pw"); err != nil {
			t.Fatalf("ChangePassword: %v", err)
		}
		record, _ := users.GetUser(ctx, "u1")
		if err := VerifyPassword(record.PasswordHash, "new-pw"); err != nil {
			t.Errorf("new password does not verify: %v", err)
		}
		if len(mails.all()) == 0 {
			t.Error("expected a change notification mail")
		}
	})
}

func TestAuthService_ResetPassword_WithOTP(t *testing.T) {
	t.Parallel()

	hash, _ := HashPassword("old-pw")
	users := newMemUsers(persistence.User{ID: "u1", Email: "r@example.com", PasswordHash: hash})
	svc := newTestAuthService(users, nil, testTime(t, 9))
	ctx := context.Background()

	if err := svc.ForgotPasswordOTP(ctx, "r@example.com"); err != nil {
		t.Fatalf("ForgotPasswordOTP: %v", err)
	}
	if err := svc.ResetPassword(ctx, ResetPasswordParams{Email: "r@example.com", OTP: "123456", NewPassword: "fresh-pw"}); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	record, _ := users.GetUser(ctx, "u1")
	if err := VerifyPassword(record.PasswordHash, "fresh-pw"); err != nil {
		t.Errorf("new password does not verify: %v", err)
	}
	if record.ResetOTP != nil {
		t.Error("reset OTP was not cleared")
	}

	// The consumed code cannot be replayed.
	err := svc.ResetPassword(ctx, ResetPasswordParams{Email: "r@example.com", OTP: "123456", NewPassword: "again"})
	if !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid on replay, got %v", err)
	}
}

func TestAuthService_ResetPassword_WithLinkToken(t *testing.T) {
	t.Parallel()

	hash, _ := HashPassword("old-pw")
	users := newMemUsers(persistence.User{ID: "u1", Email: "l@example.com", PasswordHash: hash})
	issued := testTime(t, 9)
	svc := newTestAuthService(users, nil, issued)
	ctx := context.Background()

	if err := svc.ForgotPasswordLink(ctx, "l@example.com"); err != nil {
		t.Fatalf("ForgotPasswordLink: %v", err)
	}

	t.Run("expired token", func(t *testing.T) {
		lateSvc := newTestAuthService(users, nil, issued.Add(16*time.Minute))
		err := lateSvc.ResetPassword(ctx, ResetPasswordParams{Token: "reset-token-1", NewPassword: "fresh-pw"})
		if !errors.Is(err, ErrOTPInvalid) {
			t.Fatalf("expected ErrOTPInvalid for expired token, got %v", err)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		if err := svc.ResetPassword(ctx, ResetPasswordParams{Token: "reset-token-1", NewPassword: "fresh-pw"}); err != nil {
			t.Fatalf("ResetPassword: %v", err)
		}
		record, _ := users.GetUser(ctx, "u1")
		if err := VerifyPassword(record.PasswordHash, "fresh-pw"); err != nil {
			t.Errorf("new password does not verify: %v", err)
		}
	})
}

func TestAuthService_SaveProfileImage(t *testing.T) {
	t.Parallel()

	users := newMemUsers(persistence.User{ID: "u1", Email: "img@example.com"})
	svc := newTestAuthService(users, nil, testTime(t, 9))

	user, err := svc.SaveProfileImage(context.Background(), Principal{UserID: "u1"}, "uploads/u1.png")
	if err != nil {
		t.Fatalf("SaveProfileImage: %v", err)
	}
	if user.ImageURL != "uploads/u1.png" {
		t.Errorf("expected image url saved, got %q", user.ImageURL)
	}
}
