package errors

import (
	"errors"
	"net/http"
)

const (
	ErrorTypeInvalidCredentials ErrorType = "invalid_credentials"
	ErrorTypeAccountInactive    ErrorType = "account_inactive"
)

// AuthError is a login failure. Quiet failures are routine traffic
// (a mistyped password) and are not logged by the handler.
type AuthError struct {
	*AppError
	ShouldLog bool
}

func (e *AuthError) Error() string { return e.AppError.Error() }

func (e *AuthError) Unwrap() error { return e.AppError }

// NewInvalidCredentialsError covers both an unknown email and a wrong
// password so callers cannot probe which accounts exist.
func NewInvalidCredentialsError() *AuthError {
	return &AuthError{AppError: &AppError{
		Type:    ErrorTypeInvalidCredentials,
		Message: "Invalid email or password",
		Code:    http.StatusUnauthorized,
	}}
}

func NewAccountInactiveError() *AuthError {
	return &AuthError{AppError: &AppError{
		Type:    ErrorTypeAccountInactive,
		Message: "Account is not active",
		Code:    http.StatusForbidden,
		Details: "Contact an administrator to reactivate the account",
	}}
}

// ShouldLogAuthError reports whether err deserves a log line. Errors that
// are not AuthErrors always do.
func ShouldLogAuthError(err error) bool {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.ShouldLog
	}
	return true
}
