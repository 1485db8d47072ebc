package application

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrUnauthorized is returned when the caller's identity is missing or invalid.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrForbidden is returned when the policy engine denies the acting user.
	ErrForbidden = errors.New("application: forbidden")
	// ErrConflict is returned when a write collides with existing state, such
	// as an overlapping booking, a duplicate signup, or a repeated poll vote.
	ErrConflict = errors.New("application: conflict")
	// ErrInvalidCredentials is returned when a password comparison fails.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrOTPInvalid is returned when a one-time code or reset token is wrong
	// or past its validity window.
	ErrOTPInvalid = errors.New("application: invalid or expired code")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
