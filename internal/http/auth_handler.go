package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/employee-portal/internal/application"
)

const maxUploadBytes = 5 << 20

type authService interface {
	SendSignupOTP(ctx context.Context, email, name string) error
	VerifySignupOTP(ctx context.Context, email, otp string) error
	CompleteSignup(ctx context.Context, email, name, password string) error
	Login(ctx context.Context, email, password string) (application.LoginResult, error)
	ChangePassword(ctx context.Context, principal application.Principal, oldPassword, newPassword string) error
	ForgotPasswordOTP(ctx context.Context, email string) error
	ForgotPasswordLink(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, params application.ResetPasswordParams) error
	Profile(ctx context.Context, principal application.Principal) (application.User, error)
	SaveProfileImage(ctx context.Context, principal application.Principal, imagePath string) (application.User, error)
}

type AuthHandler struct {
	service   authService
	uploadDir string
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, uploadDir string, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, uploadDir: uploadDir, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

func (h *AuthHandler) SendSignupOTP(w http.ResponseWriter, r *http.Request) {
	var req signupOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SendSignupOTP", "email", req.Email)
	if err := h.service.SendSignupOTP(r.Context(), req.Email, req.Name); err != nil {
		logger.ErrorContext(r.Context(), "signup otp request failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "An OTP has been sent to your email."})
}

func (h *AuthHandler) VerifySignupOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.VerifySignupOTP(r.Context(), req.Email, req.OTP); err != nil {
		h.log(r.Context(), "VerifySignupOTP", "email", req.Email).ErrorContext(r.Context(), "otp verification failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "OTP verified. You can now set your password."})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Signup", "email", req.Email)
	if err := h.service.CompleteSignup(r.Context(), req.Email, req.Name, req.Password); err != nil {
		logger.ErrorContext(r.Context(), "signup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "signup completed")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, messageResponse{Message: "Account created successfully. You can now log in."})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := h.log(r.Context(), "Login", "email", email)

	result, err := h.service.Login(r.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) || errors.Is(err, application.ErrNotFound) {
			logger.ErrorContext(r.Context(), "login rejected", "error", err, "error_kind", application.ErrorKind(err))
		} else {
			logger.ErrorContext(r.Context(), "login failed", "error", err, "error_kind", application.ErrorKind(err))
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", result.User.ID).InfoContext(r.Context(), "login succeeded")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      toUserDTO(result.User),
	})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.ChangePassword(r.Context(), principal, req.OldPassword, req.NewPassword); err != nil {
		h.log(r.Context(), "ChangePassword", "principal_id", principal.UserID).ErrorContext(r.Context(), "password change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "Password changed successfully."})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.ForgotPasswordOTP(r.Context(), req.Email); err != nil {
		h.log(r.Context(), "ForgotPassword", "email", req.Email).ErrorContext(r.Context(), "reset otp request failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "A reset OTP has been sent to your email."})
}

func (h *AuthHandler) ForgotPasswordLink(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.ForgotPasswordLink(r.Context(), req.Email); err != nil {
		h.log(r.Context(), "ForgotPasswordLink", "email", req.Email).ErrorContext(r.Context(), "reset link request failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "A reset link has been sent to your email."})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	err := h.service.ResetPassword(r.Context(), application.ResetPasswordParams{
		Email:       req.Email,
		OTP:         req.OTP,
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.log(r.Context(), "ResetPassword").ErrorContext(r.Context(), "password reset failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "Password reset successfully. You can now log in."})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	user, err := h.service.Profile(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Profile", "principal_id", principal.UserID).ErrorContext(r.Context(), "profile fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toUserDTO(user)})
}

// UploadImage accepts a multipart "image" file, stores it under the upload
// directory, and records the path on the profile.
func (h *AuthHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "UploadImage", "principal_id", principal.UserID)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		logger.ErrorContext(r.Context(), "missing image file", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("An image file is required."))
		return
	}
	defer file.Close()

	name := fmt.Sprintf("%s-%d%s", principal.UserID, time.Now().UnixNano(), filepath.Ext(header.Filename))
	path := filepath.Join(h.uploadDir, name)
	out, err := os.Create(path)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to store upload", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
		return
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		logger.ErrorContext(r.Context(), "failed to store upload", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
		return
	}

	user, err := h.service.SaveProfileImage(r.Context(), principal, path)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to save image path", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "profile image uploaded", "path", path)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toUserDTO(user)})
}

type signupOTPRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email,omitempty"`
	OTP         string `json:"otp,omitempty"`
	Token       string `json:"token,omitempty"`
	NewPassword string `json:"newPassword"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      userDTO   `json:"user"`
}

type userResponse struct {
	User userDTO `json:"user"`
}
