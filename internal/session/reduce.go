package session

import (
	"errors"
	"fmt"
	"slices"

	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/scoring"
	"github.com/abhisek/tangocho/internal/selector"
)

// Reduce applies one action to a session and returns the next session.
// s is never modified. When an action is rejected the returned session is
// s itself, possibly with Warning set, together with the error.
func Reduce(s Session, a Action) (Session, error) {
	switch a := a.(type) {
	case Start:
		if s.Screen != ScreenTitle {
			return s, invalid(a, s.Screen)
		}
		s.Screen = ScreenSelectingSet
		s.Warning = ""
		return s, nil

	case PickSet:
		if s.Screen != ScreenSelectingSet {
			return s, invalid(a, s.Screen)
		}
		if a.Index < 0 {
			return s, fmt.Errorf("%w: %d", ErrInvalidSet, a.Index)
		}
		s.SetIndex = a.Index
		s.Screen = ScreenConfiguring
		s.Warning = ""
		return s, nil

	case Configure:
		if s.Screen != ScreenConfiguring {
			return s, invalid(a, s.Screen)
		}
		if a.Count <= 0 {
			err := fmt.Errorf("%w: %d", selector.ErrInvalidCount, a.Count)
			s.Warning = err.Error()
			return s, err
		}
		s.Config = Config{Filter: a.Filter, Count: a.Count, Direction: a.Direction}
		s.Warning = ""
		return s, nil

	case Begin:
		return begin(s, a)

	case Edit:
		if s.Screen != ScreenQuiz {
			return s, invalid(a, s.Screen)
		}
		if q, ok := s.Current(); !ok || q.Outcome != Pending {
			return s, ErrAlreadyJudged
		}
		s.Draft = a.Text
		return s, nil

	case Submit:
		return submit(s, a)

	case Next:
		if s.Screen != ScreenQuiz {
			return s, invalid(a, s.Screen)
		}
		q, ok := s.Current()
		if !ok || q.Outcome == Pending {
			return s, ErrNotJudged
		}
		return advance(s), nil

	case Flip:
		if s.Screen != ScreenFlashcard {
			return s, invalid(a, s.Screen)
		}
		s.Flipped = !s.Flipped
		return s, nil

	case Mark:
		if s.Screen != ScreenFlashcard {
			return s, invalid(a, s.Screen)
		}
		qs := s.cloneQuestions()
		qs[s.Position].Outcome = outcomeOf(a.Correct)
		s.Questions = qs
		return advance(s), nil

	case ToggleFavorite:
		return toggleFavorite(s, a)

	case Flushed:
		if !s.InDrill() && s.Screen != ScreenFinish {
			return s, invalid(a, s.Screen)
		}
		return recordWrites(s, a.Saved, a.Failed), nil

	case Committed:
		if s.Screen != ScreenFinish {
			return s, invalid(a, s.Screen)
		}
		s = recordWrites(s, a.Saved, a.Failed)
		if len(s.Failed) > 0 {
			s.Warning = fmt.Sprintf("%d word(s) could not be saved; commit again to retry", len(s.Failed))
			return s, nil
		}
		return s.resetToSets(), nil

	case Abandon:
		if s.Screen == ScreenTitle {
			return s, invalid(a, s.Screen)
		}
		return s.resetToSets(), nil
	}

	return s, fmt.Errorf("%w: unknown action %T", ErrInvalidTransition, a)
}

func begin(s Session, a Begin) (Session, error) {
	if s.Screen != ScreenConfiguring {
		return s, invalid(a, s.Screen)
	}

	drawn, err := selector.Select(a.Pool, s.Config.Filter, s.Config.Direction, s.Config.Count, a.Rand)
	if err != nil {
		if errors.Is(err, selector.ErrEmptySelection) {
			s.Warning = "No words match this filter. Pick another filter."
		} else {
			s.Warning = err.Error()
		}
		return s, err
	}

	qs := make([]Question, len(drawn))
	for i, w := range drawn {
		qs[i] = Question{Word: w, Favorite: w.IsFavorite}
	}

	s.ID = a.SessionID
	s.Questions = qs
	s.Position = 0
	s.Draft = ""
	s.Flipped = false
	s.Warning = ""
	s.Failed = nil
	if s.Config.Direction == mastery.Recognize {
		s.Screen = ScreenFlashcard
	} else {
		s.Screen = ScreenQuiz
	}
	return s, nil
}

func submit(s Session, a Submit) (Session, error) {
	if s.Screen != ScreenQuiz {
		return s, invalid(a, s.Screen)
	}
	q, ok := s.Current()
	if !ok {
		return s, invalid(a, s.Screen)
	}
	if q.Outcome != Pending {
		return s, ErrAlreadyJudged
	}

	answer := a.Answer
	if answer == "" {
		answer = s.Draft
	}

	verdict := scoring.Score(q.Word.TargetText, answer)
	if verdict == scoring.Empty {
		s.Warning = "Type an answer first."
		return s, ErrEmptyAnswer
	}

	qs := s.cloneQuestions()
	qs[s.Position].Answer = answer
	qs[s.Position].Outcome = outcomeOf(verdict == scoring.Correct)
	s.Questions = qs
	s.Draft = answer
	s.Warning = ""
	return s, nil
}

// advance moves to the next position, entering FINISH after the last one.
func advance(s Session) Session {
	s.Position++
	s.Draft = ""
	s.Flipped = false
	s.Warning = ""
	if s.Position >= len(s.Questions) {
		s.Position = len(s.Questions)
		s.Screen = ScreenFinish
	}
	return s
}

func toggleFavorite(s Session, a ToggleFavorite) (Session, error) {
	switch {
	case s.Screen == ScreenFinish:
		if a.Index < 0 || a.Index >= len(s.Questions) {
			return s, fmt.Errorf("%w: question %d", ErrInvalidTransition, a.Index)
		}
	case s.InDrill():
		if a.Index < 0 || a.Index > s.Position || a.Index >= len(s.Questions) {
			return s, fmt.Errorf("%w: question %d", ErrInvalidTransition, a.Index)
		}
	default:
		return s, invalid(a, s.Screen)
	}

	qs := s.cloneQuestions()
	qs[a.Index].Favorite = !qs[a.Index].Favorite
	qs[a.Index].Persisted = false
	s.Questions = qs
	return s, nil
}

// recordWrites marks saved ids as persisted and replaces the failure list.
func recordWrites(s Session, saved, failed []int) Session {
	qs := s.cloneQuestions()
	for i := range qs {
		if slices.Contains(saved, qs[i].Word.ID) {
			qs[i].Persisted = true
		}
	}
	s.Questions = qs

	var still []int
	for _, id := range s.Failed {
		if !slices.Contains(saved, id) && !slices.Contains(failed, id) {
			still = append(still, id)
		}
	}
	s.Failed = append(still, failed...)
	return s
}

func outcomeOf(correct bool) Outcome {
	if correct {
		return Correct
	}
	return Incorrect
}
