package session

import (
	"math/rand/v2"

	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/selector"
	"github.com/abhisek/tangocho/internal/vocab"
)

// Action is one learner gesture or I/O result fed to Reduce.
type Action interface {
	action()
}

// Start leaves the title screen.
type Start struct{}

// PickSet chooses the set to study.
type PickSet struct {
	Index int
}

// Configure records filter, count and direction.
type Configure struct {
	Filter    selector.Filter
	Count     int
	Direction mastery.Direction
}

// Begin draws questions from the set's pool and enters the drill.
type Begin struct {
	SessionID string
	Pool      []vocab.Word
	// Rand seeds the draw; nil uses the global source.
	Rand *rand.Rand
}

// Edit replaces the quiz input buffer.
type Edit struct {
	Text string
}

// Submit judges a typed answer for the current quiz question.
type Submit struct {
	Answer string
}

// Next advances past a judged quiz question.
type Next struct{}

// Flip turns the current flashcard over.
type Flip struct{}

// Mark records a self-judged flashcard outcome and advances.
type Mark struct {
	Correct bool
}

// ToggleFavorite flips the pending favorite flag of a question.
type ToggleFavorite struct {
	Index int
}

// Flushed reports the result of an immediate per-answer write.
type Flushed struct {
	Saved  []int
	Failed []int
}

// Committed reports the result of the finish-screen commit.
type Committed struct {
	Saved  []int
	Failed []int
}

// Abandon leaves the current run without persisting anything.
type Abandon struct{}

func (Start) action()          {}
func (PickSet) action()        {}
func (Configure) action()      {}
func (Begin) action()          {}
func (Edit) action()           {}
func (Submit) action()         {}
func (Next) action()           {}
func (Flip) action()           {}
func (Mark) action()           {}
func (ToggleFavorite) action() {}
func (Flushed) action()        {}
func (Committed) action()      {}
func (Abandon) action()        {}
