package session

import (
	"fmt"

	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/selector"
	"github.com/abhisek/tangocho/internal/vocab"
)

// Screen is the session's position in the study flow.
type Screen int

const (
	ScreenTitle        Screen = iota // initial state
	ScreenSelectingSet               // choosing a 100-word set
	ScreenConfiguring                // filter, count and direction
	ScreenQuiz                       // typed recall drill
	ScreenFlashcard                  // self-marked recognition drill
	ScreenFinish                     // results awaiting commit
)

func (s Screen) String() string {
	switch s {
	case ScreenTitle:
		return "title"
	case ScreenSelectingSet:
		return "selecting-set"
	case ScreenConfiguring:
		return "configuring"
	case ScreenQuiz:
		return "quiz"
	case ScreenFlashcard:
		return "flashcard"
	case ScreenFinish:
		return "finish"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// Outcome is the judged tri-state of a question.
type Outcome int

const (
	Pending Outcome = iota
	Correct
	Incorrect
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "pending"
	}
}

// Config is what the learner chose on the configure screen.
type Config struct {
	Filter    selector.Filter
	Count     int
	Direction mastery.Direction
}

// Question is one drawn word plus the learner's buffered response.
type Question struct {
	// Word is the snapshot taken when the question list was drawn.
	Word vocab.Word

	// Answer is the submitted text (quiz mode only).
	Answer string

	Outcome Outcome

	// Favorite is the pending favorite flag, initialized from the snapshot.
	Favorite bool

	// Persisted is set once the pending write for this question is stored.
	Persisted bool
}

// Session is an immutable study-run value. Reduce returns modified copies;
// a Session is never mutated in place.
type Session struct {
	ID       string
	Screen   Screen
	SetIndex int
	Config   Config

	Questions []Question
	Position  int

	// Draft is the input buffer for the current quiz question.
	Draft string

	// Flipped is true when a flashcard shows its answer side.
	Flipped bool

	// Warning is a learner-visible message from the last rejected action.
	Warning string

	// Failed lists word ids whose last write attempt failed.
	Failed []int
}

// New returns a session on the title screen.
func New() Session {
	return Session{Screen: ScreenTitle}
}

// Current returns the question at the current position.
func (s Session) Current() (Question, bool) {
	if s.Position < 0 || s.Position >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Position], true
}

// Total is the number of drawn questions.
func (s Session) Total() int {
	return len(s.Questions)
}

// InDrill reports whether questions are being answered.
func (s Session) InDrill() bool {
	return s.Screen == ScreenQuiz || s.Screen == ScreenFlashcard
}

func (s Session) cloneQuestions() []Question {
	out := make([]Question, len(s.Questions))
	copy(out, s.Questions)
	return out
}

// resetToSets drops every transient buffer and returns to set selection.
func (s Session) resetToSets() Session {
	return Session{Screen: ScreenSelectingSet, Config: s.Config}
}
