package mastery

import "fmt"

// MaxLevel is the level at which a direction counts as mastered.
const MaxLevel = 2

// Direction is the study direction a level applies to.
type Direction int

const (
	Recall    Direction = iota // produce the English word from the Japanese prompt
	Recognize                  // accept the English word shown on a flashcard
)

func (d Direction) String() string {
	switch d {
	case Recall:
		return "recall"
	case Recognize:
		return "recognize"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection maps a config/CLI name to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "recall":
		return Recall, nil
	case "recognize":
		return Recognize, nil
	}
	return Recall, fmt.Errorf("unknown direction %q", s)
}

// Level extracts a single direction's level from a packed mastery value.
func Level(m int, dir Direction) int {
	if dir == Recognize {
		return m / 10
	}
	return m % 10
}

// Pack combines both levels into the stored form recognize*10 + recall.
func Pack(recognize, recall int) int {
	return recognize*10 + recall
}

// Unpack splits a stored mastery value into its two levels.
func Unpack(m int) (recognize, recall int) {
	return m / 10, m % 10
}

// ApplyOutcome returns the next mastery value after one judged answer.
// A correct answer raises the direction's level by one up to MaxLevel;
// a wrong answer resets it to zero. The other direction is untouched.
func ApplyOutcome(m int, dir Direction, correct bool) int {
	level := Level(m, dir)
	if correct {
		level = min(level+1, MaxLevel)
	} else {
		level = 0
	}

	recognize, recall := Unpack(m)
	if dir == Recognize {
		return Pack(level, recall)
	}
	return Pack(recognize, level)
}

// IsMastered reports whether the direction has reached MaxLevel.
func IsMastered(m int, dir Direction) bool {
	return Level(m, dir) == MaxLevel
}

// ProgressRate is the mastered fraction of a collection, 0 when empty.
func ProgressRate(mastered, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(mastered) / float64(total)
}
