// Package services implements the StackIt statistics propagator: the write
// path that keeps every derived counter consistent with the fact tables,
// the read query over stored aggregates, and the consistency verifier.
//
// This file centralizes service-level errors. Each failure kind has a
// sentinel (for errors.Is) and a typed error carrying the offending ids.
// Translation into user-facing messages or HTTP status codes is done by the
// caller.
package services

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrNotFound indicates that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAuthorization is returned when the actor may not perform the action,
	// e.g. accepting an answer on someone else's question.
	ErrAuthorization = errors.New("not authorized")

	// ErrSelfVote is returned when a user votes on their own answer.
	ErrSelfVote = errors.New("cannot vote on own answer")

	// ErrQuestionClosed is returned when a closed question receives a new
	// answer or an acceptance change.
	ErrQuestionClosed = errors.New("question is closed")

	// ErrDuplicate surfaces an unexpected unique-constraint violation. Every
	// write path uses upserts, so this signals a bug rather than user error.
	ErrDuplicate = errors.New("duplicate record")

	// ErrPersistence wraps a storage failure that aborted the event.
	ErrPersistence = errors.New("persistence failure")

	// ErrInvalidInput is returned when an argument fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

// Entity names carried by NotFoundError.
const (
	EntityUser         = "user"
	EntityQuestion     = "question"
	EntityAnswer       = "answer"
	EntityTag          = "tag"
	EntityComment      = "comment"
	EntityNotification = "notification"
)

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.Entity, e.ID) }

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AuthorizationError reports an actor attempting an action reserved for
// someone else.
type AuthorizationError struct {
	UserID string
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %q is not allowed to %s", e.UserID, e.Action)
}

// Is matches ErrAuthorization.
func (e *AuthorizationError) Is(target error) bool { return target == ErrAuthorization }

// SelfVoteError reports a vote by an answer's own author.
type SelfVoteError struct {
	UserID   string
	AnswerID string
}

func (e *SelfVoteError) Error() string {
	return fmt.Sprintf("user %q cannot vote on own answer %q", e.UserID, e.AnswerID)
}

// Is matches ErrSelfVote.
func (e *SelfVoteError) Is(target error) bool { return target == ErrSelfVote }

// QuestionClosedError reports a write against a closed question.
type QuestionClosedError struct {
	QuestionID string
}

func (e *QuestionClosedError) Error() string {
	return fmt.Sprintf("question %q is closed", e.QuestionID)
}

// Is matches ErrQuestionClosed.
func (e *QuestionClosedError) Is(target error) bool { return target == ErrQuestionClosed }

// DuplicateError wraps a unique-constraint violation.
type DuplicateError struct {
	Op  string
	Err error
}

func (e *DuplicateError) Error() string { return fmt.Sprintf("%s: duplicate record: %v", e.Op, e.Err) }

// Is matches ErrDuplicate.
func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// Unwrap returns the driver error.
func (e *DuplicateError) Unwrap() error { return e.Err }

// PersistenceError wraps a storage failure. The event's transaction has been
// rolled back when this is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: persistence failure: %v", e.Op, e.Err) }

// Is matches ErrPersistence.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Unwrap returns the storage error.
func (e *PersistenceError) Unwrap() error { return e.Err }

// ValidationError reports a rejected argument.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// isDomainError reports whether err is one of the typed failures above that
// must pass through the transaction wrapper unchanged.
func isDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAuthorization) ||
		errors.Is(err, ErrSelfVote) ||
		errors.Is(err, ErrQuestionClosed) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrPersistence) ||
		errors.Is(err, ErrInvalidInput)
}
