package scoring

import (
	"strings"

	"golang.org/x/text/cases"
)

// Verdict is the result of scoring a typed answer.
type Verdict int

const (
	Empty Verdict = iota // blank submission, not a wrong answer
	Correct
	Incorrect
)

func (v Verdict) String() string {
	switch v {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "empty"
	}
}

// Score compares the learner's input against the expected answer.
//
// Normalization rules:
// - Leading and trailing whitespace is trimmed
// - Comparison is case-insensitive (Unicode case folding)
// - Internal whitespace is significant
// - No partial credit
func Score(expected, actual string) Verdict {
	actual = strings.TrimSpace(actual)
	if actual == "" {
		return Empty
	}

	fold := cases.Fold()
	if fold.String(actual) == fold.String(strings.TrimSpace(expected)) {
		return Correct
	}
	return Incorrect
}
