package session

import (
	"errors"
	"fmt"

	"github.com/abhisek/tangocho/internal/selector"
	"github.com/abhisek/tangocho/internal/vocab"
)

var (
	// ErrEmptySelection means the chosen filter left nothing to quiz.
	ErrEmptySelection = selector.ErrEmptySelection

	// ErrEmptyAnswer means a blank answer was submitted; the question stays open.
	ErrEmptyAnswer = errors.New("answer is empty")

	// ErrAlreadyJudged means the current question already has a verdict.
	ErrAlreadyJudged = errors.New("question already judged")

	// ErrNotJudged means Next was requested before answering.
	ErrNotJudged = errors.New("question not judged yet")

	// ErrInvalidTransition means the action is not allowed on the current screen.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidSet means the requested set does not exist.
	ErrInvalidSet = errors.New("invalid set")
)

// WriteFailure reports records that could not be persisted. The session
// stays on the finish screen so the commit can be retried.
type WriteFailure struct {
	IDs []int
	Err error
}

func (e *WriteFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to save %d word(s) %v: %v", len(e.IDs), e.IDs, e.Err)
	}
	return fmt.Sprintf("failed to save %d word(s) %v", len(e.IDs), e.IDs)
}

func (e *WriteFailure) Unwrap() error { return e.Err }

// ReadFailure reports that words could not be loaded. It is only raised
// before a drill starts. SetIndex is -1 for reads that span every set.
type ReadFailure struct {
	SetIndex int
	Err      error
}

func (e *ReadFailure) Error() string {
	if e.SetIndex < 0 {
		return fmt.Sprintf("failed to load words: %v", e.Err)
	}
	return fmt.Sprintf("failed to load set %d: %v", vocab.SetLabel(e.SetIndex), e.Err)
}

func (e *ReadFailure) Unwrap() error { return e.Err }

func invalid(a Action, s Screen) error {
	return fmt.Errorf("%w: %T on %s", ErrInvalidTransition, a, s)
}
