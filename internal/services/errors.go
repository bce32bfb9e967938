package services

import (
	"errors"
	"fmt"

	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/validator"
)

// Error kinds. Every error a service returns wraps exactly one of these.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrInternal   = errors.New("internal error")
)

// Specific errors
var (
	ErrQuizNotFound      = fmt.Errorf("quiz %w", ErrNotFound)
	ErrSubjectNotFound   = fmt.Errorf("subject %w", ErrNotFound)
	ErrCategoryNotFound  = fmt.Errorf("category %w", ErrNotFound)
	ErrAttemptNotFound   = fmt.Errorf("attempt %w", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrReferenceNotFound = fmt.Errorf("referenced record %w", ErrNotFound)

	ErrAttemptAlreadyCompleted = fmt.Errorf("%w: attempt already completed", ErrConflict)
	ErrAttemptReferenced       = fmt.Errorf("%w: attempt is still referenced by answers", ErrConflict)
	ErrDuplicate               = fmt.Errorf("%w: record already exists", ErrConflict)

	ErrInvalidID = fmt.Errorf("%w: id must be a positive integer", ErrValidation)
)

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindInternal   ErrorKind = "internal"
)

// KindOf classifies a service error. Anything unrecognised is internal.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindInternal
	}
}

// newValidationError joins field errors with ErrValidation so callers can
// both classify the error and extract the field details.
func newValidationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// internalError hides the store error behind ErrInternal. The cause is kept as
// text only so driver errors never leak through errors.Is/As.
func internalError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}

// ValidationDetails extracts field errors from a validation failure
func ValidationDetails(err error) validator.ValidationErrors {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return nil
}

// storeError maps a store failure onto a service error. notFound is returned
// for missing rows and foreign-key violations; conflict for unique violations.
func storeError(op string, err error, notFound, conflict error) error {
	switch repositories.ClassifyError(err) {
	case repositories.KindNotFound, repositories.KindForeignKeyViolation:
		if notFound != nil {
			return notFound
		}
	case repositories.KindDuplicate:
		if conflict != nil {
			return conflict
		}
	}
	return internalError(op, err)
}

// asServiceError passes service errors through and hides anything else as internal
func asServiceError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrInternal} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return internalError(op, err)
}

func validID(id uint) error {
	if id == 0 {
		return ErrInvalidID
	}
	return nil
}
