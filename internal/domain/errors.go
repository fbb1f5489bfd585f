package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors that can occur during contest operations.
var (
	// ErrInvalidTransition indicates that a transition was attempted from a
	// status outside the transition's source set.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrPreconditionFailed indicates that the source status matched but a
	// named precondition was not satisfied.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrNotFound indicates that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates that a unique combination of fields already exists.
	ErrDuplicate = errors.New("duplicate entity")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// TransitionError reports a transition whose source status did not match.
// It names the entity, the transition and the status the entity was in.
type TransitionError struct {
	Entity     string
	ID         string
	Transition string
	Current    string
	Allowed    []string
}

// Error implements the error interface for TransitionError.
func (e *TransitionError) Error() string {
	return fmt.Sprintf(
		"invalid transition: %s %s cannot %s from %s (allowed from: %s)",
		e.Entity, e.ID, e.Transition, e.Current, strings.Join(e.Allowed, ", "),
	)
}

// Unwrap returns ErrInvalidTransition so callers can use errors.Is.
func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// PreconditionError reports the first failed precondition of a transition.
type PreconditionError struct {
	Entity     string
	ID         string
	Transition string
	// Condition is the stable identifier of the failed predicate, e.g. "scores_entered".
	Condition string
	// Reason is the human readable explanation, e.g. "scores not yet entered".
	Reason string
}

// Error implements the error interface for PreconditionError.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf(
		"precondition failed: %s %s cannot %s: %s (%s)",
		e.Entity, e.ID, e.Transition, e.Reason, e.Condition,
	)
}

// Unwrap returns ErrPreconditionFailed so callers can use errors.Is.
func (e *PreconditionError) Unwrap() error { return ErrPreconditionFailed }

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string

	// Cause optionally classifies the failure, e.g. ErrDuplicate.
	Cause error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// Unwrap returns the classifying cause, if any.
func (e *ValidationError) Unwrap() error { return e.Cause }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// AddFieldError adds a message scoped to a single field.
func (e *ValidationError) AddFieldError(field, msg string) {
	e.Errors = append(e.Errors, field+": "+msg)
}

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// ErrOrNil returns e when it holds errors and nil otherwise, so callers can
// accumulate messages and return the result in one step.
func (e *ValidationError) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
}

func duplicate(entity, field, msg string) error {
	verr := NewValidationError(entity)
	verr.AddFieldError(field, msg)
	verr.Cause = ErrDuplicate
	return verr
}

// Outcome classifies the result of an operation for metrics and traces.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrPreconditionFailed):
		return "precondition_failed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	default:
		return "error"
	}
}
