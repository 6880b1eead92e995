package usergroup

import (
	"github.com/orris-inc/warden/internal/shared/errors"
)

// DomainError is a field-level validation failure raised by the aggregate.
type DomainError struct {
	*errors.AppError
}

func newFieldError(field, message string) *DomainError {
	return &DomainError{AppError: errors.NewFieldError(field, message)}
}

func (e *DomainError) Error() string {
	return e.AppError.Error()
}

func (e *DomainError) Unwrap() error {
	return e.AppError
}
