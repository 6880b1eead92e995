package user

import (
	"github.com/orris-inc/warden/internal/shared/errors"
)

// DomainError represents a user domain-specific error
type DomainError struct {
	*errors.AppError
}

func NewDomainError(field, message string) *DomainError {
	return &DomainError{AppError: errors.NewFieldError(field, message)}
}

func (e *DomainError) Error() string {
	return e.AppError.Error()
}

func (e *DomainError) Unwrap() error {
	return e.AppError
}
