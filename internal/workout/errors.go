package workout

import (
	"fmt"

	"github.com/myrjola/gymlog/internal/errors"
)

var (
	// ErrValidation reports input the user has to correct. The operation did not change any state.
	ErrValidation = errors.NewSentinel("validation failed")
	// ErrEmptySession is returned when completing a session without exercises.
	ErrEmptySession = fmt.Errorf("%w: workout has no exercises", ErrValidation)
	// ErrInvalidState reports an operation that is not allowed in the current session state.
	ErrInvalidState = errors.NewSentinel("invalid state")
	// ErrNoActiveSession is returned by session mutations when no workout is in progress.
	ErrNoActiveSession = fmt.Errorf("%w: no workout in progress", ErrInvalidState)
	// ErrNotFound is returned by lookups. Session mutations that target a stale exercise or set swallow it.
	ErrNotFound = errors.NewSentinel("not found")
)

// ExternalServiceError reports a failed call to a collaborator outside the process, such as the workout coach.
// UserMessage is suitable for showing to the user as is.
type ExternalServiceError struct {
	Op          string
	UserMessage string
	Retryable   bool
	Err         error
}

func (e *ExternalServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.UserMessage)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
