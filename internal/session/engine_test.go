package session

import (
	"context"
	"errors"
	"sort"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/tangocho/internal/logger"
	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/selector"
	"github.com/abhisek/tangocho/internal/store"
	"github.com/abhisek/tangocho/internal/vocab"
)

var errBoom = errors.New("boom")

// fakeWordRepo is an in-memory WordRepo that records writes.
type fakeWordRepo struct {
	words    map[int]vocab.Word
	updates  []store.WordFields
	updated  []int
	failIDs  map[int]bool
	readErr  error
	listCall int
}

func newFakeWordRepo(words ...vocab.Word) *fakeWordRepo {
	r := &fakeWordRepo{words: make(map[int]vocab.Word), failIDs: make(map[int]bool)}
	for _, w := range words {
		r.words[w.ID] = w
	}
	return r
}

func (r *fakeWordRepo) sorted() []vocab.Word {
	out := make([]vocab.Word, 0, len(r.words))
	for _, w := range r.words {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeWordRepo) match(w vocab.Word, f store.WordFilter) bool {
	if f.IDRange != nil && !f.IDRange.Contains(w.ID) {
		return false
	}
	if f.Favorite != nil && w.IsFavorite != *f.Favorite {
		return false
	}
	if f.Level != nil {
		l := mastery.Level(w.Mastery, f.Level.Direction)
		switch f.Level.Op {
		case store.LevelLt:
			return l < f.Level.Level
		case store.LevelGte:
			return l >= f.Level.Level
		default:
			return l == f.Level.Level
		}
	}
	return true
}

func (r *fakeWordRepo) List(_ context.Context, f store.WordFilter) ([]vocab.Word, error) {
	r.listCall++
	if r.readErr != nil {
		return nil, r.readErr
	}
	limit := f.Limit
	if limit <= 0 {
		limit = store.DefaultPageSize
	}
	var out []vocab.Word
	for _, w := range r.sorted() {
		if f.AfterID != nil && w.ID <= *f.AfterID {
			continue
		}
		if r.match(w, f) {
			out = append(out, w)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeWordRepo) ListAll(ctx context.Context, f store.WordFilter, pageSize int) ([]vocab.Word, error) {
	var all []vocab.Word
	f.Limit = pageSize
	for {
		page, err := r.List(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
		last := page[len(page)-1].ID
		f.AfterID = &last
	}
}

func (r *fakeWordRepo) Update(_ context.Context, id int, fields store.WordFields) error {
	if r.failIDs[id] {
		return errBoom
	}
	w, ok := r.words[id]
	if !ok {
		return store.ErrNotFound
	}
	if fields.Mastery != nil {
		w.Mastery = *fields.Mastery
	}
	if fields.IsFavorite != nil {
		w.IsFavorite = *fields.IsFavorite
	}
	r.words[id] = w
	r.updated = append(r.updated, id)
	r.updates = append(r.updates, fields)
	return nil
}

func (r *fakeWordRepo) Count(_ context.Context, f store.WordFilter) (int, error) {
	if r.readErr != nil {
		return 0, r.readErr
	}
	n := 0
	for _, w := range r.words {
		if r.match(w, f) {
			n++
		}
	}
	return n, nil
}

func (r *fakeWordRepo) Upsert(_ context.Context, words []vocab.Word) error {
	for _, w := range words {
		r.words[w.ID] = w
	}
	return nil
}

func (r *fakeWordRepo) MaxID(context.Context) (int, bool, error) {
	if r.readErr != nil {
		return 0, false, r.readErr
	}
	maxID, ok := 0, false
	for id := range r.words {
		if !ok || id > maxID {
			maxID, ok = id, true
		}
	}
	return maxID, ok, nil
}

// fakeEventRepo records appended session events.
type fakeEventRepo struct {
	events []store.SessionEventData
	err    error
}

func (r *fakeEventRepo) AppendSessionEvent(_ context.Context, data store.SessionEventData) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, data)
	return nil
}

func (r *fakeEventRepo) RecentSessions(_ context.Context, limit int) ([]store.SessionEvent, error) {
	var out []store.SessionEvent
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, store.SessionEvent{SessionEventData: r.events[i], Sequence: int64(i + 1)})
	}
	return out, nil
}

func scenarioRepo() *fakeWordRepo {
	return newFakeWordRepo(scenarioPool()...)
}

// startQuiz drives a session to the quiz screen through the engine.
func startQuiz(t *testing.T, e *Engine, count int) Session {
	t.Helper()
	ctx := context.Background()
	s := New()
	var err error
	for _, a := range []Action{Start{}, PickSet{Index: 0}, Configure{Filter: selector.All, Count: count, Direction: mastery.Recall}} {
		if s, err = e.Dispatch(ctx, s, a); err != nil {
			t.Fatalf("Dispatch(%T): %v", a, err)
		}
	}
	s, err = e.Begin(ctx, s, seeded(7))
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return s
}

// answerAll answers each question using answers keyed by target text.
func answerAll(t *testing.T, e *Engine, s Session, answers map[string]string) Session {
	t.Helper()
	ctx := context.Background()
	for s.Screen == ScreenQuiz {
		q, _ := s.Current()
		var err error
		if s, err = e.Dispatch(ctx, s, Submit{Answer: answers[q.Word.TargetText]}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if s, err = e.Dispatch(ctx, s, Next{}); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	return s
}

func TestEngine_EndToEndScenario(t *testing.T) {
	repo := scenarioRepo()
	events := &fakeEventRepo{}
	e := NewEngine(Options{Words: repo, Events: events})

	s := startQuiz(t, e, 5)
	if s.Total() != 2 {
		t.Fatalf("Total() = %d, want 2", s.Total())
	}
	if s.ID == "" {
		t.Error("expected a session id")
	}

	s = answerAll(t, e, s, map[string]string{"dog": "Dog", "cat": "bird"})
	if s.Screen != ScreenFinish {
		t.Fatalf("screen = %s, want finish", s.Screen)
	}
	if len(repo.updated) != 0 {
		t.Fatalf("batch mode wrote before commit: %v", repo.updated)
	}

	s, err := e.Commit(context.Background(), s)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if s.Screen != ScreenSelectingSet {
		t.Errorf("screen after commit = %s, want selecting-set", s.Screen)
	}

	if got := repo.words[1].Mastery; got != 1 {
		t.Errorf("word 1 mastery = %d, want 1", got)
	}
	if got := repo.words[2].Mastery; got != 20 {
		t.Errorf("word 2 mastery = %d, want 20", got)
	}

	if len(events.events) != 2 || events.events[0].Action != store.ActionStart || events.events[1].Action != store.ActionCommit {
		t.Errorf("events = %+v, want start then commit", events.events)
	}
	if events.events[1].CorrectAnswers != 1 {
		t.Errorf("commit CorrectAnswers = %d, want 1", events.events[1].CorrectAnswers)
	}
}

func TestEngine_AbandonWritesNothing(t *testing.T) {
	repo := scenarioRepo()
	events := &fakeEventRepo{}
	e := NewEngine(Options{Words: repo, Events: events})

	s := startQuiz(t, e, 2)
	s, err := e.Dispatch(context.Background(), s, Submit{Answer: "dog"})
	if err != nil {
		t.Fatal(err)
	}

	s, err = e.Abandon(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if s.Screen != ScreenSelectingSet {
		t.Errorf("screen = %s, want selecting-set", s.Screen)
	}
	if len(repo.updated) != 0 {
		t.Errorf("abandon wrote words %v", repo.updated)
	}
	if repo.words[1].Mastery != 0 || repo.words[2].Mastery != 20 {
		t.Error("store modified by abandoned session")
	}
	if last := events.events[len(events.events)-1]; last.Action != store.ActionAbandon {
		t.Errorf("last event = %s, want abandon", last.Action)
	}
}

func TestEngine_CommitFailureIsRetryable(t *testing.T) {
	repo := scenarioRepo()
	repo.failIDs[2] = true
	e := NewEngine(Options{Words: repo})

	s := startQuiz(t, e, 2)
	s = answerAll(t, e, s, map[string]string{"dog": "dog", "cat": "cat"})

	s, err := e.Commit(context.Background(), s)
	var wf *WriteFailure
	if !errors.As(err, &wf) {
		t.Fatalf("err = %v, want *WriteFailure", err)
	}
	if len(wf.IDs) != 1 || wf.IDs[0] != 2 {
		t.Errorf("failed ids = %v, want [2]", wf.IDs)
	}
	if !errors.Is(err, errBoom) {
		t.Error("WriteFailure should wrap the store error")
	}
	if s.Screen != ScreenFinish {
		t.Fatalf("screen = %s, want finish after failure", s.Screen)
	}
	if repo.words[1].Mastery != 1 {
		t.Errorf("word 1 mastery = %d, want 1 (other records still written)", repo.words[1].Mastery)
	}

	repo.failIDs[2] = false
	repo.updated = nil
	s, err = e.Commit(context.Background(), s)
	if err != nil {
		t.Fatalf("retry Commit: %v", err)
	}
	if len(repo.updated) != 1 || repo.updated[0] != 2 {
		t.Errorf("retry wrote %v, want only [2]", repo.updated)
	}
	if repo.words[2].Mastery != 21 {
		t.Errorf("word 2 mastery = %d, want 21", repo.words[2].Mastery)
	}
	if s.Screen != ScreenSelectingSet {
		t.Errorf("screen = %s, want selecting-set", s.Screen)
	}
}

func TestEngine_ReadFailureBeforeQuiz(t *testing.T) {
	repo := scenarioRepo()
	e := NewEngine(Options{Words: repo})

	s := mustReduce(t, New(), Start{}, PickSet{Index: 0}, Configure{Filter: selector.All, Count: 2})
	repo.readErr = errBoom

	next, err := e.Begin(context.Background(), s, nil)
	var rf *ReadFailure
	if !errors.As(err, &rf) {
		t.Fatalf("err = %v, want *ReadFailure", err)
	}
	if next.Screen != ScreenConfiguring {
		t.Errorf("screen = %s, want configuring", next.Screen)
	}
}

func TestReadFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *ReadFailure
		want string
	}{
		{"one set", &ReadFailure{SetIndex: 0, Err: errBoom}, "failed to load set 1: boom"},
		{"every set", &ReadFailure{SetIndex: -1, Err: errBoom}, "failed to load words: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_PickSetChecksStore(t *testing.T) {
	e := NewEngine(Options{Words: scenarioRepo()})
	s := mustReduce(t, New(), Start{})

	_, err := e.Dispatch(context.Background(), s, PickSet{Index: 4})
	if !errors.Is(err, ErrInvalidSet) {
		t.Errorf("err = %v, want ErrInvalidSet", err)
	}
}

func TestEngine_ImmediateMode(t *testing.T) {
	repo := scenarioRepo()
	e := NewEngine(Options{Words: repo, Mode: WriteImmediate})

	s := startQuiz(t, e, 2)
	q, _ := s.Current()
	s, err := e.Dispatch(context.Background(), s, Submit{Answer: q.Word.TargetText})
	if err != nil {
		t.Fatal(err)
	}
	if len(repo.updated) != 1 || repo.updated[0] != q.Word.ID {
		t.Fatalf("immediate mode wrote %v, want [%d]", repo.updated, q.Word.ID)
	}
	if !s.Questions[0].Persisted {
		t.Error("question should be marked persisted")
	}

	s = answerAll(t, e, mustNext(t, e, s), map[string]string{"dog": "x", "cat": "x"})
	repo.updated = nil
	if _, err := e.Commit(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if len(repo.updated) != 0 {
		t.Errorf("commit rewrote already persisted records: %v", repo.updated)
	}
}

func TestEngine_ImmediateWriteFailure(t *testing.T) {
	repo := scenarioRepo()
	repo.failIDs[1] = true
	repo.failIDs[2] = true
	e := NewEngine(Options{Words: repo, Mode: WriteImmediate})

	s := startQuiz(t, e, 2)
	s, err := e.Dispatch(context.Background(), s, Submit{Answer: "dog"})
	var wf *WriteFailure
	if !errors.As(err, &wf) {
		t.Fatalf("err = %v, want *WriteFailure", err)
	}
	if q, _ := s.Current(); q.Outcome == Pending {
		t.Error("answer must stay judged after a failed write")
	}
	if len(s.Failed) != 1 {
		t.Errorf("Failed = %v, want one id", s.Failed)
	}
}

func TestEngine_Sets(t *testing.T) {
	repo := newFakeWordRepo(
		vocab.Word{ID: 0, SourceText: "a", TargetText: "a", Mastery: 2},
		vocab.Word{ID: 1, SourceText: "b", TargetText: "b", Mastery: 20},
		vocab.Word{ID: 250, SourceText: "c", TargetText: "c", Mastery: 22},
	)
	e := NewEngine(Options{Words: repo})

	sets, err := e.Sets(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sets) != 2 {
		t.Fatalf("len(sets) = %d, want 2 (empty set 1 skipped)", len(sets))
	}
	if sets[0].Words != 2 || sets[0].RecallMastered != 1 || sets[0].RecognizeMastered != 1 {
		t.Errorf("set 0 = %+v", sets[0])
	}
	if sets[1].Index != 2 || sets[1].Label() != 3 {
		t.Errorf("set 1 = %+v, want index 2 label 3", sets[1])
	}
}

func TestEngine_LogsWriteFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	repo := scenarioRepo()
	repo.failIDs[1] = true
	e := NewEngine(Options{Words: repo, Logger: logger.FromZap(zap.New(core))})

	s := startQuiz(t, e, 2)
	s = answerAll(t, e, s, map[string]string{"dog": "dog", "cat": "cat"})
	_, _ = e.Commit(context.Background(), s)

	failures := logs.FilterMessage("store write failed").All()
	if len(failures) != 1 {
		t.Fatalf("got %d write failure logs, want 1", len(failures))
	}
	if id := failures[0].ContextMap()["word_id"]; id != int64(1) {
		t.Errorf("word_id = %v, want 1", id)
	}
}

func TestEngine_EventFailureDoesNotBreakFlow(t *testing.T) {
	e := NewEngine(Options{Words: scenarioRepo(), Events: &fakeEventRepo{err: errBoom}})
	s := startQuiz(t, e, 2)
	if s.Screen != ScreenQuiz {
		t.Errorf("screen = %s, want quiz", s.Screen)
	}
}

func mustNext(t *testing.T, e *Engine, s Session) Session {
	t.Helper()
	s, err := e.Dispatch(context.Background(), s, Next{})
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	return s
}

func TestEngine_History(t *testing.T) {
	events := &fakeEventRepo{}
	e := NewEngine(Options{Words: scenarioRepo(), Events: events})

	s := startQuiz(t, e, 2)
	if _, err := e.Abandon(context.Background(), s); err != nil {
		t.Fatalf("Abandon: %v", err)
	}

	got, err := e.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Action != store.ActionAbandon || got[1].Action != store.ActionStart {
		t.Errorf("expected newest first, got %s then %s", got[0].Action, got[1].Action)
	}
}

func TestEngine_HistoryWithoutEventRepo(t *testing.T) {
	e := NewEngine(Options{Words: scenarioRepo()})

	got, err := e.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if got != nil {
		t.Errorf("expected no events, got %v", got)
	}
}

func TestEngine_States(t *testing.T) {
	repo := newFakeWordRepo(
		vocab.Word{ID: 1, SourceText: "犬", TargetText: "dog", Mastery: 0},
		vocab.Word{ID: 2, SourceText: "猫", TargetText: "cat", Mastery: 21},
		vocab.Word{ID: 3, SourceText: "鳥", TargetText: "bird", Mastery: 2},
		vocab.Word{ID: 4, SourceText: "魚", TargetText: "fish", Mastery: 12},
	)
	e := NewEngine(Options{Words: repo})

	recall, err := e.States(context.Background(), mastery.Recall)
	if err != nil {
		t.Fatalf("States: %v", err)
	}
	if recall.New != 1 || recall.Learning != 1 || recall.Mastered != 2 {
		t.Errorf("recall = %+v, want 1/1/2", recall)
	}
	if recall.Total() != 4 {
		t.Errorf("Total() = %d, want 4", recall.Total())
	}
	if recall.Count(mastery.StateMastered) != 2 {
		t.Errorf("Count(mastered) = %d, want 2", recall.Count(mastery.StateMastered))
	}

	recognize, err := e.States(context.Background(), mastery.Recognize)
	if err != nil {
		t.Fatalf("States: %v", err)
	}
	if recognize.New != 2 || recognize.Learning != 1 || recognize.Mastered != 1 {
		t.Errorf("recognize = %+v, want 2/1/1", recognize)
	}

	repo.readErr = errBoom
	if _, err := e.States(context.Background(), mastery.Recall); !errors.Is(err, errBoom) {
		t.Errorf("err = %v, want boom", err)
	}
}
