package http

import (
	"context"
	"log/slog"
	"net/http"
)

// CaptchaVerifier checks a client-supplied challenge token with an external
// verification service. The portal consumes the service, it never implements
// the challenge itself.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) error
}

// NopCaptchaVerifier accepts every request. Used when no verification
// service is configured.
type NopCaptchaVerifier struct{}

// Verify implements CaptchaVerifier.
func (NopCaptchaVerifier) Verify(context.Context, string) error { return nil }

// VerifyCaptcha gates the wrapped handler on the X-Captcha-Token header.
// A nil or nop verifier lets everything through without reading the header.
func VerifyCaptcha(verifier CaptchaVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}
		if _, ok := verifier.(NopCaptchaVerifier); ok {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Captcha-Token")
			if err := verifier.Verify(r.Context(), token); err != nil {
				responder.loggerFor(r.Context()).WarnContext(r.Context(), "captcha verification failed", "error", err)
				responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Message: "Captcha verification failed. Please try again."})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
