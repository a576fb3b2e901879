package mastery

// MasteryState is the display name for a single direction's level.
type MasteryState string

const (
	StateNew      MasteryState = "new"
	StateLearning MasteryState = "learning"
	StateMastered MasteryState = "mastered"
)

// StateOf maps a level to its display state.
func StateOf(level int) MasteryState {
	switch {
	case level >= MaxLevel:
		return StateMastered
	case level > 0:
		return StateLearning
	default:
		return StateNew
	}
}

// StateTransition records a state change for one word in one direction,
// shown on the finish screen before the results are committed.
type StateTransition struct {
	WordID    int
	Direction Direction
	From      MasteryState
	To        MasteryState
}

// Changed reports whether the display state moved.
func (t StateTransition) Changed() bool {
	return t.From != t.To
}

// TransitionFor derives the transition between two packed mastery values.
func TransitionFor(wordID, before, after int, dir Direction) StateTransition {
	return StateTransition{
		WordID:    wordID,
		Direction: dir,
		From:      StateOf(Level(before, dir)),
		To:        StateOf(Level(after, dir)),
	}
}
