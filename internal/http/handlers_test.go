package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/employee-portal/internal/application"
	"github.com/example/employee-portal/internal/policy"
	"github.com/example/employee-portal/internal/testfixtures"
)

type tokenResolver struct {
	principals map[string]application.Principal
}

func (t *tokenResolver) ResolvePrincipal(ctx context.Context, token string) (application.Principal, error) {
	principal, ok := t.principals[token]
	if !ok {
		return application.Principal{}, application.ErrUnauthorized
	}
	return principal, nil
}

type authServiceStub struct {
	loginResult application.LoginResult
	loginErr    error
}

func (s *authServiceStub) SendSignupOTP(ctx context.Context, email, name string) error { return nil }
func (s *authServiceStub) VerifySignupOTP(ctx context.Context, email, otp string) error {
	return nil
}
func (s *authServiceStub) CompleteSignup(ctx context.Context, email, name, password string) error {
	return nil
}
func (s *authServiceStub) Login(ctx context.Context, email, password string) (application.LoginResult, error) {
	if s.loginErr != nil {
		return application.LoginResult{}, s.loginErr
	}
	return s.loginResult, nil
}
func (s *authServiceStub) ChangePassword(ctx context.Context, principal application.Principal, oldPassword, newPassword string) error {
	return nil
}
func (s *authServiceStub) ForgotPasswordOTP(ctx context.Context, email string) error  { return nil }
func (s *authServiceStub) ForgotPasswordLink(ctx context.Context, email string) error { return nil }
func (s *authServiceStub) ResetPassword(ctx context.Context, params application.ResetPasswordParams) error {
	return nil
}
func (s *authServiceStub) Profile(ctx context.Context, principal application.Principal) (application.User, error) {
	return application.User{ID: principal.UserID, Email: principal.Email, Role: principal.Role}, nil
}
func (s *authServiceStub) SaveProfileImage(ctx context.Context, principal application.Principal, imagePath string) (application.User, error) {
	return application.User{ID: principal.UserID, ImageURL: imagePath}, nil
}

type bookingServiceStub struct {
	createErr error
	created   application.Booking
	cancelErr error
	list      []application.Booking
}

func (s *bookingServiceStub) Create(ctx context.Context, actor application.Principal, roomID, date, startTime string) (application.Booking, error) {
	if s.createErr != nil {
		return application.Booking{}, s.createErr
	}
	return s.created, nil
}
func (s *bookingServiceStub) Cancel(ctx context.Context, actor application.Principal, bookingID string) error {
	return s.cancelErr
}
func (s *bookingServiceStub) List(ctx context.Context) ([]application.Booking, error) {
	return s.list, nil
}

type userServiceStub struct {
	users     []application.User
	updateErr error
	updated   application.User
	gotTarget string
	gotRole   string
}

func (s *userServiceStub) List(ctx context.Context) ([]application.User, error) {
	return s.users, nil
}
func (s *userServiceStub) UpdateRole(ctx context.Context, actor application.Principal, targetID, newRole string) (application.User, error) {
	s.gotTarget, s.gotRole = targetID, newRole
	if s.updateErr != nil {
		return application.User{}, s.updateErr
	}
	return s.updated, nil
}

type pollServiceStub struct {
	voteErr error
	poll    application.Poll
}

func (s *pollServiceStub) Create(ctx context.Context, actor application.Principal, question string, options []string) (application.Poll, error) {
	return s.poll, nil
}
func (s *pollServiceStub) List(ctx context.Context) ([]application.Poll, error) { return nil, nil }
func (s *pollServiceStub) Vote(ctx context.Context, actor application.Principal, pollID, optionID string) (application.Poll, error) {
	if s.voteErr != nil {
		return application.Poll{}, s.voteErr
	}
	return s.poll, nil
}
func (s *pollServiceStub) Delete(ctx context.Context, actor application.Principal, pollID string) error {
	return nil
}

func testRouter(t *testing.T, auth *authServiceStub, bookings *bookingServiceStub, users *userServiceStub, polls *pollServiceStub) http.Handler {
	t.Helper()

	resolver := &tokenResolver{principals: map[string]application.Principal{
		"emp-token": testfixtures.NewUserFixture(
			testfixtures.WithUserID("emp"),
			testfixtures.WithUserName("Eve"),
			testfixtures.WithUserEmail("eve@example.com"),
		).Principal(),
		"adm-token": testfixtures.NewUserFixture(
			testfixtures.WithUserID("adm"),
			testfixtures.WithUserName("Ada"),
			testfixtures.WithUserEmail("ada@example.com"),
			testfixtures.WithUserRole(policy.RoleAdmin),
		).Principal(),
		"sup-token": testfixtures.NewUserFixture(
			testfixtures.WithUserID("sup"),
			testfixtures.WithUserName("Sam"),
			testfixtures.WithUserEmail("sam@example.com"),
			testfixtures.WithUserRole(policy.RoleSuperAdmin),
		).Principal(),
	}}

	cfg := RouterConfig{
		RequireAuth:  RequireAuth(resolver, nil),
		RequireAdmin: RequireRole(nil, policy.RoleAdmin, policy.RoleSuperAdmin),
		RequireSuper: RequireRole(nil, policy.RoleSuperAdmin),
	}
	if auth != nil {
		cfg.Auth = NewAuthHandler(auth, t.TempDir(), nil)
	}
	if bookings != nil {
		cfg.Bookings = NewBookingHandler(bookings, nil)
	}
	if users != nil {
		cfg.Users = NewUserHandler(users, nil)
	}
	if polls != nil {
		cfg.Polls = NewPollHandler(polls, nil)
	}
	return NewRouter(cfg)
}

func doJSON(t *testing.T, handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Login(t *testing.T) {
	t.Parallel()

	auth := &authServiceStub{loginResult: application.LoginResult{
		Token:     "issued-token",
		ExpiresAt: time.Date(2025, 6, 27, 9, 0, 0, 0, time.UTC),
		User:      application.User{ID: "u1", Email: "eve@example.com", Role: policy.RoleEmployee},
	}}
	router := testRouter(t, auth, nil, nil, nil)

	t.Run("success", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", `{"email":"eve@example.com","password":"pw"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Token string `json:"token"`
			User  struct {
				Email string `json:"email"`
			} `json:"user"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Token != "issued-token" || resp.User.Email != "eve@example.com" {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("bad credentials map to 401", func(t *testing.T) {
		failing := &authServiceStub{loginErr: application.ErrInvalidCredentials}
		router := testRouter(t, failing, nil, nil, nil)
		rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", `{"email":"eve@example.com","password":"bad"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", `{`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/auth/login", "", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want 405", rec.Code)
		}
	})
}

func TestRouter_Bookings(t *testing.T) {
	t.Parallel()

	t.Run("requires auth", func(t *testing.T) {
		router := testRouter(t, nil, &bookingServiceStub{}, nil, nil)
		rec := doJSON(t, router, http.MethodGet, "/api/bookings", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("conflict maps to 409", func(t *testing.T) {
		router := testRouter(t, nil, &bookingServiceStub{createErr: application.ErrConflict}, nil, nil)
		rec := doJSON(t, router, http.MethodPost, "/api/bookings", "emp-token", `{"roomId":"r1","date":"2025-06-26","time":"10:00"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("validation maps to 422", func(t *testing.T) {
		vErr := &application.ValidationError{FieldErrors: map[string]string{"time": "start time is required"}}
		router := testRouter(t, nil, &bookingServiceStub{createErr: vErr}, nil, nil)
		rec := doJSON(t, router, http.MethodPost, "/api/bookings", "emp-token", `{"roomId":"r1","date":"2025-06-26"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
		var resp struct {
			Errors map[string]string `json:"errors"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Errors["time"] == "" {
			t.Errorf("expected field error in body, got %s", rec.Body.String())
		}
	})

	t.Run("forbidden cancellation maps to 403", func(t *testing.T) {
		router := testRouter(t, nil, &bookingServiceStub{cancelErr: application.ErrForbidden}, nil, nil)
		rec := doJSON(t, router, http.MethodDelete, "/api/bookings/bk-1", "emp-token", "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})
}

func TestRouter_UserAdministration(t *testing.T) {
	t.Parallel()

	t.Run("employee cannot list users", func(t *testing.T) {
		router := testRouter(t, nil, nil, &userServiceStub{}, nil)
		rec := doJSON(t, router, http.MethodGet, "/api/users", "emp-token", "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("admin lists users", func(t *testing.T) {
		router := testRouter(t, nil, nil, &userServiceStub{users: []application.User{{ID: "u1"}}}, nil)
		rec := doJSON(t, router, http.MethodGet, "/api/users", "adm-token", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("role change is superadmin only", func(t *testing.T) {
		users := &userServiceStub{updated: application.User{ID: "u1", Role: policy.RoleAdmin}}
		router := testRouter(t, nil, nil, users, nil)

		rec := doJSON(t, router, http.MethodPut, "/api/users/u1/role", "adm-token", `{"role":"admin"}`)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("admin status = %d, want 403", rec.Code)
		}

		rec = doJSON(t, router, http.MethodPut, "/api/users/u1/role", "sup-token", `{"role":"admin"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("superadmin status = %d, body %s", rec.Code, rec.Body.String())
		}
		if users.gotTarget != "u1" || users.gotRole != "admin" {
			t.Errorf("service got target=%q role=%q", users.gotTarget, users.gotRole)
		}
	})
}

func TestRouter_PollVote(t *testing.T) {
	t.Parallel()

	t.Run("double vote maps to 409", func(t *testing.T) {
		router := testRouter(t, nil, nil, nil, &pollServiceStub{voteErr: application.ErrConflict})
		rec := doJSON(t, router, http.MethodPost, "/api/polls/p1/vote", "emp-token", `{"optionId":"o1"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("employee cannot create polls", func(t *testing.T) {
		router := testRouter(t, nil, nil, nil, &pollServiceStub{})
		rec := doJSON(t, router, http.MethodPost, "/api/polls", "emp-token", `{"question":"q","options":["a","b"]}`)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})
}
