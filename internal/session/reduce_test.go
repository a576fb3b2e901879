package session

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/selector"
	"github.com/abhisek/tangocho/internal/vocab"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func scenarioPool() []vocab.Word {
	return []vocab.Word{
		{ID: 1, SourceText: "犬", TargetText: "dog", Mastery: 0},
		{ID: 2, SourceText: "猫", TargetText: "cat", Mastery: 20},
	}
}

// mustReduce applies actions in order and fails on the first error.
func mustReduce(t *testing.T, s Session, actions ...Action) Session {
	t.Helper()
	for _, a := range actions {
		var err error
		s, err = Reduce(s, a)
		if err != nil {
			t.Fatalf("Reduce(%T) on %s: %v", a, s.Screen, err)
		}
	}
	return s
}

func configured(t *testing.T, f selector.Filter, count int, dir mastery.Direction) Session {
	t.Helper()
	return mustReduce(t, New(),
		Start{},
		PickSet{Index: 0},
		Configure{Filter: f, Count: count, Direction: dir},
	)
}

func TestReduce_HappyPathTransitions(t *testing.T) {
	s := New()
	if s.Screen != ScreenTitle {
		t.Fatalf("initial screen = %s, want title", s.Screen)
	}

	s = mustReduce(t, s, Start{})
	if s.Screen != ScreenSelectingSet {
		t.Errorf("after Start screen = %s", s.Screen)
	}

	s = mustReduce(t, s, PickSet{Index: 3})
	if s.Screen != ScreenConfiguring || s.SetIndex != 3 {
		t.Errorf("after PickSet screen = %s set = %d", s.Screen, s.SetIndex)
	}

	s = mustReduce(t, s,
		Configure{Filter: selector.All, Count: 5, Direction: mastery.Recall},
		Begin{SessionID: "s1", Pool: scenarioPool(), Rand: seeded(1)},
	)
	if s.Screen != ScreenQuiz {
		t.Errorf("recall Begin screen = %s, want quiz", s.Screen)
	}
	if s.Total() != 2 {
		t.Errorf("Total() = %d, want 2 (clamped)", s.Total())
	}
	if s.ID != "s1" {
		t.Errorf("ID = %q, want s1", s.ID)
	}
}

func TestReduce_RecognizeEntersFlashcard(t *testing.T) {
	s := configured(t, selector.All, 5, mastery.Recognize)
	s = mustReduce(t, s, Begin{Pool: scenarioPool(), Rand: seeded(1)})
	if s.Screen != ScreenFlashcard {
		t.Errorf("screen = %s, want flashcard", s.Screen)
	}
}

func TestReduce_EmptySelectionStaysConfiguring(t *testing.T) {
	s := configured(t, selector.Favorites, 5, mastery.Recall)

	next, err := Reduce(s, Begin{Pool: scenarioPool(), Rand: seeded(1)})
	if !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("err = %v, want ErrEmptySelection", err)
	}
	if next.Screen != ScreenConfiguring {
		t.Errorf("screen = %s, want configuring", next.Screen)
	}
	if next.Warning == "" {
		t.Error("expected a warning to be surfaced")
	}
	if len(next.Questions) != 0 {
		t.Error("no questions should be drawn")
	}
}

func TestReduce_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name   string
		s      Session
		action Action
	}{
		{"pick on title", New(), PickSet{Index: 0}},
		{"submit on title", New(), Submit{Answer: "dog"}},
		{"abandon on title", New(), Abandon{}},
		{"start twice", Session{Screen: ScreenSelectingSet}, Start{}},
		{"flip in quiz", Session{Screen: ScreenQuiz}, Flip{}},
		{"mark in quiz", Session{Screen: ScreenQuiz}, Mark{Correct: true}},
		{"commit in quiz", Session{Screen: ScreenQuiz}, Committed{}},
		{"begin on sets", Session{Screen: ScreenSelectingSet}, Begin{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Reduce(tc.s, tc.action)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("err = %v, want ErrInvalidTransition", err)
			}
			if next.Screen != tc.s.Screen {
				t.Errorf("screen changed to %s", next.Screen)
			}
		})
	}
}

func TestReduce_ConfigureRejectsNonPositiveCount(t *testing.T) {
	s := mustReduce(t, New(), Start{}, PickSet{Index: 0})
	_, err := Reduce(s, Configure{Count: 0})
	if !errors.Is(err, selector.ErrInvalidCount) {
		t.Errorf("err = %v, want ErrInvalidCount", err)
	}
}

func TestReduce_QuizSubmitOncePerPosition(t *testing.T) {
	s := configured(t, selector.All, 1, mastery.Recall)
	s = mustReduce(t, s, Begin{Pool: scenarioPool()[:1]})

	// Empty answer is not a wrong answer and does not advance.
	next, err := Reduce(s, Submit{Answer: "   "})
	if !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("err = %v, want ErrEmptyAnswer", err)
	}
	if q, _ := next.Current(); q.Outcome != Pending {
		t.Errorf("outcome after empty submit = %s, want pending", q.Outcome)
	}

	// Next before judging is rejected.
	if _, err := Reduce(s, Next{}); !errors.Is(err, ErrNotJudged) {
		t.Errorf("Next before submit err = %v, want ErrNotJudged", err)
	}

	s = mustReduce(t, s, Submit{Answer: " Dog "})
	if q, _ := s.Current(); q.Outcome != Correct || q.Answer != " Dog " {
		t.Errorf("question = %+v, want correct with stored answer", q)
	}

	if _, err := Reduce(s, Submit{Answer: "cat"}); !errors.Is(err, ErrAlreadyJudged) {
		t.Errorf("second submit err = %v, want ErrAlreadyJudged", err)
	}
	if _, err := Reduce(s, Edit{Text: "x"}); !errors.Is(err, ErrAlreadyJudged) {
		t.Errorf("edit after judge err = %v, want ErrAlreadyJudged", err)
	}

	s = mustReduce(t, s, Next{})
	if s.Screen != ScreenFinish {
		t.Errorf("screen = %s, want finish", s.Screen)
	}
	if s.Questions[0].Answer != " Dog " {
		t.Error("stored answer must survive into finish")
	}
}

func TestReduce_SubmitUsesDraft(t *testing.T) {
	s := configured(t, selector.All, 1, mastery.Recall)
	s = mustReduce(t, s,
		Begin{Pool: scenarioPool()[:1]},
		Edit{Text: "dog"},
		Submit{},
	)
	if q, _ := s.Current(); q.Outcome != Correct {
		t.Errorf("outcome = %s, want correct", q.Outcome)
	}

	s = mustReduce(t, s, Next{})
	if s.Draft != "" {
		t.Errorf("Draft = %q after Next, want empty", s.Draft)
	}
}

func TestReduce_FlashcardFlipAndMark(t *testing.T) {
	s := configured(t, selector.All, 2, mastery.Recognize)
	s = mustReduce(t, s, Begin{Pool: scenarioPool(), Rand: seeded(4)})

	s = mustReduce(t, s, Flip{})
	if !s.Flipped {
		t.Error("expected Flipped after Flip")
	}

	s = mustReduce(t, s, Mark{Correct: true})
	if s.Position != 1 || s.Flipped {
		t.Errorf("after Mark position = %d flipped = %v, want 1 false", s.Position, s.Flipped)
	}
	if s.Questions[0].Outcome != Correct {
		t.Errorf("first outcome = %s, want correct", s.Questions[0].Outcome)
	}

	s = mustReduce(t, s, Mark{Correct: false})
	if s.Screen != ScreenFinish {
		t.Errorf("screen = %s, want finish", s.Screen)
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := configured(t, selector.All, 2, mastery.Recall)
	s = mustReduce(t, s, Begin{Pool: scenarioPool(), Rand: seeded(2)})

	before := s.Questions[0]
	_ = mustReduce(t, s, Submit{Answer: "bird"}, ToggleFavorite{Index: 0})

	if s.Questions[0] != before {
		t.Errorf("input session mutated: %+v -> %+v", before, s.Questions[0])
	}
	if s.Position != 0 {
		t.Errorf("input position mutated to %d", s.Position)
	}
}

func TestReduce_ToggleFavorite(t *testing.T) {
	s := configured(t, selector.All, 2, mastery.Recall)
	s = mustReduce(t, s, Begin{Pool: scenarioPool(), Rand: seeded(3)})

	// Cannot flag a question that has not been shown yet.
	if _, err := Reduce(s, ToggleFavorite{Index: 1}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("future toggle err = %v, want ErrInvalidTransition", err)
	}

	s = mustReduce(t, s, ToggleFavorite{Index: 0})
	if !s.Questions[0].Favorite {
		t.Error("expected favorite buffered")
	}
	if s.Questions[0].Word.IsFavorite {
		t.Error("snapshot must not change")
	}

	s = mustReduce(t, s, Submit{Answer: "x"}, Next{}, Submit{Answer: "y"}, Next{})
	s = mustReduce(t, s, ToggleFavorite{Index: 1}, ToggleFavorite{Index: 0})
	if s.Questions[0].Favorite || !s.Questions[1].Favorite {
		t.Errorf("finish toggles = %v %v, want false true", s.Questions[0].Favorite, s.Questions[1].Favorite)
	}
}

func TestReduce_AbandonClearsBuffers(t *testing.T) {
	s := configured(t, selector.All, 2, mastery.Recall)
	s = mustReduce(t, s, Begin{SessionID: "s1", Pool: scenarioPool(), Rand: seeded(1)}, Submit{Answer: "dog"})

	s = mustReduce(t, s, Abandon{})
	if s.Screen != ScreenSelectingSet {
		t.Errorf("screen = %s, want selecting-set", s.Screen)
	}
	if len(s.Questions) != 0 || s.ID != "" || s.Position != 0 {
		t.Errorf("buffers not cleared: %+v", s)
	}
}

func TestReduce_CommittedWithFailuresStaysOnFinish(t *testing.T) {
	s := configured(t, selector.All, 2, mastery.Recall)
	s = mustReduce(t, s, Begin{Pool: scenarioPool(), Rand: seeded(1)},
		Submit{Answer: "a"}, Next{}, Submit{Answer: "b"}, Next{})

	first, second := s.Questions[0].Word.ID, s.Questions[1].Word.ID
	s = mustReduce(t, s, Committed{Saved: []int{first}, Failed: []int{second}})
	if s.Screen != ScreenFinish {
		t.Fatalf("screen = %s, want finish", s.Screen)
	}
	if len(s.Failed) != 1 || s.Failed[0] != second {
		t.Errorf("Failed = %v, want [%d]", s.Failed, second)
	}
	if !s.Questions[0].Persisted || s.Questions[1].Persisted {
		t.Error("persisted flags not recorded per record")
	}
	if len(PendingWrites(s)) != 1 {
		t.Errorf("PendingWrites = %v, want only the failed record", PendingWrites(s))
	}

	s = mustReduce(t, s, Committed{Saved: []int{second}})
	if s.Screen != ScreenSelectingSet {
		t.Errorf("screen after retry = %s, want selecting-set", s.Screen)
	}
}
