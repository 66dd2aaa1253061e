// Package common defines shared constants and sentinel errors used across
// the gateway and the client. Callers should use errors.Is to match the
// sentinel values; *Error adds a user-facing message on top of a sentinel.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Error kinds surfaced to users. Each maps to exactly one HTTP status
	// at the gateway boundary.
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream error")
	ErrRateLimited  = errors.New("too many attempts")

	// ErrStorage reports a local token read/write failure on the client.
	ErrStorage = errors.New("storage error")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// User-facing messages shared by the gateway and the client.
const (
	MsgAllFieldsRequired   = "All fields are required"
	MsgPasswordTooShort    = "Password must be at least 6 characters"
	MsgPasswordTooLong     = "Password must be at most 72 bytes"
	MsgAlreadyExists       = "Username or email already exists."
	MsgCredentialsRequired = "Email/Username and password are required"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgEmailRequired       = "Email is required"
	MsgResetRequested      = "If an account with that email exists, a password reset link has been sent."
	MsgInvalidResetToken   = "Invalid or expired reset token"
	MsgPasswordReset       = "Password has been reset. Please login."
	MsgTooManyAttempts     = "Too many failed login attempts. Try again later."
	MsgInvalidToken        = "Invalid or expired token"
)

// MinPasswordLength is the shortest password accepted on signup and reset,
// counted in characters.
const MinPasswordLength = 6

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// Error pairs an error kind with the message shown to the user.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError returns an *Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation returns a validation error with a user-facing message.
func Validation(message string) *Error {
	return NewError(ErrValidation, message)
}

// Message extracts the user-facing message from err. Errors that carry no
// explicit message fall back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
