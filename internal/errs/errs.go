// Package errs holds the error taxonomy shared by the quiz, grading, attempt
// and review packages.
package errs

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a quiz, question or attempt id does not exist.
var ErrNotFound = errors.New("not found")

// NotFound wraps ErrNotFound with the kind and id of the missing entity.
func NotFound(kind string, id any) error {
	return fmt.Errorf("%s %v: %w", kind, id, ErrNotFound)
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// ErrInvalid marks input rejected before it reaches a store.
var ErrInvalid = errors.New("invalid")

// Invalid wraps ErrInvalid with a description of what was wrong.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func IsInvalid(err error) bool { return errors.Is(err, ErrInvalid) }

// MissingAnswerError aborts a whole submission: the question was left unanswered.
type MissingAnswerError struct {
	QuestionID int64
}

func (e MissingAnswerError) Error() string {
	return fmt.Sprintf("question %d was not answered", e.QuestionID)
}

// MalformedAnswerError reports an answer value that is not an answer id.
type MalformedAnswerError struct {
	QuestionID int64
	Value      string
}

func (e MalformedAnswerError) Error() string {
	return fmt.Sprintf("question %d: malformed answer %q", e.QuestionID, e.Value)
}

// QuestionOf returns the question id carried by a submission error.
func QuestionOf(err error) (int64, bool) {
	var m MissingAnswerError
	if errors.As(err, &m) {
		return m.QuestionID, true
	}
	var b MalformedAnswerError
	if errors.As(err, &b) {
		return b.QuestionID, true
	}
	return 0, false
}
