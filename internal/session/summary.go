package session

import (
	"math"

	"github.com/abhisek/tangocho/internal/mastery"
)

// Write is a single pending store update.
type Write struct {
	ID         int
	Mastery    int
	IsFavorite bool
}

// NextMastery is the value a question's word will have once committed.
// Unjudged questions keep their snapshot mastery.
func NextMastery(q Question, dir mastery.Direction) int {
	if q.Outcome == Pending {
		return q.Word.Mastery
	}
	return mastery.ApplyOutcome(q.Word.Mastery, dir, q.Outcome == Correct)
}

// PendingWrites lists the updates a commit must persist: every judged
// question not yet stored, plus unjudged ones whose favorite flag changed.
func PendingWrites(s Session) []Write {
	var writes []Write
	for _, q := range s.Questions {
		if q.Persisted {
			continue
		}
		if q.Outcome == Pending && q.Favorite == q.Word.IsFavorite {
			continue
		}
		writes = append(writes, Write{
			ID:         q.Word.ID,
			Mastery:    NextMastery(q, s.Config.Direction),
			IsFavorite: q.Favorite,
		})
	}
	return writes
}

// QuestionResult is one row of the finish screen.
type QuestionResult struct {
	Index       int
	WordID      int
	Prompt      string
	Expected    string
	Answer      string
	Outcome     Outcome
	Mastery     int
	NextMastery int
	Favorite    bool
	Transition  mastery.StateTransition
}

// Summary holds the data displayed on the finish screen.
type Summary struct {
	TotalQuestions int
	TotalCorrect   int
	Accuracy       float64
	Results        []QuestionResult
}

// AccuracyPercent is the accuracy as a percentage rounded to one decimal.
func (s *Summary) AccuracyPercent() float64 {
	return math.Round(s.Accuracy*1000) / 10
}

// BuildSummary creates a Summary from the current session.
func BuildSummary(s Session) *Summary {
	sum := &Summary{TotalQuestions: len(s.Questions)}
	for i, q := range s.Questions {
		next := NextMastery(q, s.Config.Direction)
		if q.Outcome == Correct {
			sum.TotalCorrect++
		}
		sum.Results = append(sum.Results, QuestionResult{
			Index:       i,
			WordID:      q.Word.ID,
			Prompt:      q.Word.SourceText,
			Expected:    q.Word.TargetText,
			Answer:      q.Answer,
			Outcome:     q.Outcome,
			Mastery:     q.Word.Mastery,
			NextMastery: next,
			Favorite:    q.Favorite,
			Transition:  mastery.TransitionFor(q.Word.ID, q.Word.Mastery, next, s.Config.Direction),
		})
	}
	if sum.TotalQuestions > 0 {
		sum.Accuracy = float64(sum.TotalCorrect) / float64(sum.TotalQuestions)
	}
	return sum
}
