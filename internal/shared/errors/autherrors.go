package errors

import (
	stderrors "errors"
	"net/http"
)

// Authentication-specific error types
const (
	ErrorTypeInvalidCredentials ErrorType = "invalid_credentials"
	ErrorTypeAccountInactive    ErrorType = "account_inactive"
	ErrorTypeTokenExpired       ErrorType = "token_expired"
	ErrorTypeTokenInvalid       ErrorType = "token_invalid"
	ErrorTypeSessionExpired     ErrorType = "session_expired"
	ErrorTypePasswordChange     ErrorType = "password_change_required"
)

// Messages shown to the user by the access gate.
const (
	MsgAccountDeactivated     = "Your account has been deactivated. Please contact an administrator."
	MsgPasswordChangeRequired = "You must change your password before continuing."
)

// AuthError wraps an AppError with flags that decide how loudly it is logged.
type AuthError struct {
	*AppError
	ShouldLog     bool
	SecurityEvent bool
}

func (e *AuthError) Error() string {
	return e.AppError.Error()
}

func (e *AuthError) Unwrap() error {
	return e.AppError
}

// NewInvalidCredentialsError does not reveal whether the email or the password was wrong.
func NewInvalidCredentialsError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeInvalidCredentials,
			Message: "Invalid email or password",
			Code:    http.StatusUnauthorized,
		},
		SecurityEvent: true,
	}
}

func NewAccountInactiveError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeAccountInactive,
			Message: MsgAccountDeactivated,
			Code:    http.StatusUnauthorized,
		},
		ShouldLog:     true,
		SecurityEvent: true,
	}
}

func NewPasswordChangeRequiredError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypePasswordChange,
			Message: MsgPasswordChangeRequired,
			Code:    http.StatusForbidden,
		},
	}
}

func NewTokenExpiredError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeTokenExpired,
			Message: "Token has expired",
			Code:    http.StatusUnauthorized,
		},
	}
}

func NewTokenInvalidError(details ...string) *AuthError {
	return &AuthError{
		AppError:      newAppError(ErrorTypeTokenInvalid, http.StatusUnauthorized, "Invalid token", details),
		ShouldLog:     true,
		SecurityEvent: true,
	}
}

func NewSessionExpiredError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeSessionExpired,
			Message: "Session has expired. Please login again",
			Code:    http.StatusUnauthorized,
		},
	}
}

// IsAuthError checks if the error is an AuthError
func IsAuthError(err error) bool {
	var authErr *AuthError
	return stderrors.As(err, &authErr)
}

// GetAuthError extracts AuthError from error
func GetAuthError(err error) *AuthError {
	var authErr *AuthError
	if stderrors.As(err, &authErr) {
		return authErr
	}
	return nil
}

// ShouldLogError reports whether err deserves an error-level log line.
// Non-auth errors are always logged.
func ShouldLogError(err error) bool {
	if authErr := GetAuthError(err); authErr != nil {
		return authErr.ShouldLog
	}
	return true
}
