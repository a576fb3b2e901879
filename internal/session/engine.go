package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/tangocho/internal/logger"
	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/store"
	"github.com/abhisek/tangocho/internal/vocab"
)

// WriteMode selects when judged answers reach the word store.
type WriteMode int

const (
	// WriteBatch persists everything on the finish screen commit.
	WriteBatch WriteMode = iota
	// WriteImmediate persists each answer as soon as it is judged.
	WriteImmediate
)

// Options configures an Engine.
type Options struct {
	Words  store.WordRepo
	Events store.EventRepo // optional
	Logger *logger.Logger  // optional

	Mode     WriteMode
	PageSize int
	// Timeout bounds each store call (0 = no extra bound).
	Timeout time.Duration
}

// Engine runs the store I/O around Reduce.
type Engine struct {
	words    store.WordRepo
	events   store.EventRepo
	log      *logger.Logger
	mode     WriteMode
	pageSize int
	timeout  time.Duration
}

// NewEngine creates an Engine.
func NewEngine(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = store.DefaultPageSize
	}
	return &Engine{
		words:    opts.Words,
		events:   opts.Events,
		log:      log,
		mode:     opts.Mode,
		pageSize: pageSize,
		timeout:  opts.Timeout,
	}
}

// SetInfo describes one set for the set-selection screen and stats.
type SetInfo struct {
	Index             int
	Words             int
	RecallMastered    int
	RecognizeMastered int
}

// Label is the 1-based set number shown to learners.
func (si SetInfo) Label() int {
	return vocab.SetLabel(si.Index)
}

// Sets lists every non-empty set with its mastery counts.
func (e *Engine) Sets(ctx context.Context) ([]SetInfo, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	maxID, ok, err := e.words.MaxID(ctx)
	if err != nil {
		return nil, &ReadFailure{SetIndex: -1, Err: err}
	}
	if !ok {
		return nil, nil
	}

	var sets []SetInfo
	for i := 0; i < vocab.NumSets(maxID); i++ {
		info, err := e.setInfo(ctx, i)
		if err != nil {
			return nil, &ReadFailure{SetIndex: i, Err: err}
		}
		if info.Words > 0 {
			sets = append(sets, info)
		}
	}
	return sets, nil
}

func (e *Engine) setInfo(ctx context.Context, index int) (SetInfo, error) {
	r := vocab.SetRange(index)
	info := SetInfo{Index: index}

	var err error
	if info.Words, err = e.words.Count(ctx, store.WordFilter{IDRange: &r}); err != nil {
		return info, err
	}
	if info.Words == 0 {
		return info, nil
	}
	if info.RecallMastered, err = e.words.Count(ctx, masteredFilter(r, mastery.Recall)); err != nil {
		return info, err
	}
	if info.RecognizeMastered, err = e.words.Count(ctx, masteredFilter(r, mastery.Recognize)); err != nil {
		return info, err
	}
	return info, nil
}

// StateCounts is the number of words in each display state for one direction.
type StateCounts struct {
	Direction mastery.Direction
	New       int
	Learning  int
	Mastered  int
}

// Total is the number of words counted.
func (c StateCounts) Total() int {
	return c.New + c.Learning + c.Mastered
}

// Count returns the count for a display state.
func (c StateCounts) Count(st mastery.MasteryState) int {
	switch st {
	case mastery.StateMastered:
		return c.Mastered
	case mastery.StateLearning:
		return c.Learning
	default:
		return c.New
	}
}

// States counts every stored word by its display state in dir.
func (e *Engine) States(ctx context.Context, dir mastery.Direction) (StateCounts, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	counts := StateCounts{Direction: dir}
	for level, dst := range map[int]*int{0: &counts.New, 1: &counts.Learning, mastery.MaxLevel: &counts.Mastered} {
		n, err := e.words.Count(ctx, store.WordFilter{
			Level: &store.LevelPredicate{Direction: dir, Op: store.LevelEq, Level: level},
		})
		if err != nil {
			return counts, &ReadFailure{SetIndex: -1, Err: err}
		}
		*dst = n
	}
	return counts, nil
}

func masteredFilter(r vocab.IDRange, dir mastery.Direction) store.WordFilter {
	return store.WordFilter{
		IDRange: &r,
		Level:   &store.LevelPredicate{Direction: dir, Op: store.LevelGte, Level: mastery.MaxLevel},
	}
}

// Dispatch reduces a learner action. PickSet is checked against the store,
// and in immediate mode a judged answer is written before returning.
func (e *Engine) Dispatch(ctx context.Context, s Session, a Action) (Session, error) {
	if pick, ok := a.(PickSet); ok && s.Screen == ScreenSelectingSet {
		if err := e.checkSet(ctx, pick.Index); err != nil {
			return s, err
		}
	}

	next, err := Reduce(s, a)
	if err != nil {
		return next, err
	}

	if e.mode == WriteImmediate {
		switch a.(type) {
		case Submit, Mark:
			return e.flush(ctx, next, s.Position)
		}
	}
	return next, nil
}

func (e *Engine) checkSet(ctx context.Context, index int) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	r := vocab.SetRange(index)
	n, err := e.words.Count(ctx, store.WordFilter{IDRange: &r})
	if err != nil {
		return &ReadFailure{SetIndex: index, Err: err}
	}
	if n == 0 {
		return fmt.Errorf("%w: set %d has no words", ErrInvalidSet, vocab.SetLabel(index))
	}
	return nil
}

// flush writes the question at index immediately.
func (e *Engine) flush(ctx context.Context, s Session, index int) (Session, error) {
	if index < 0 || index >= len(s.Questions) {
		return s, nil
	}
	q := s.Questions[index]
	w := Write{ID: q.Word.ID, Mastery: NextMastery(q, s.Config.Direction), IsFavorite: q.Favorite}

	if err := e.write(ctx, s.ID, w); err != nil {
		next, _ := Reduce(s, Flushed{Failed: []int{w.ID}})
		return next, &WriteFailure{IDs: []int{w.ID}, Err: err}
	}
	return Reduce(s, Flushed{Saved: []int{w.ID}})
}

// Begin loads the chosen set and draws the questions. A nil rng draws
// from the global source.
func (e *Engine) Begin(ctx context.Context, s Session, rng *rand.Rand) (Session, error) {
	if s.Screen != ScreenConfiguring {
		return s, invalid(Begin{}, s.Screen)
	}

	pool, err := e.loadSet(ctx, s.SetIndex)
	if err != nil {
		e.log.Error("load set failed", "set", s.SetIndex, "error", err)
		return s, &ReadFailure{SetIndex: s.SetIndex, Err: err}
	}

	next, err := Reduce(s, Begin{SessionID: uuid.NewString(), Pool: pool, Rand: rng})
	if err != nil {
		return next, err
	}

	e.log.Info("session started",
		"session_id", next.ID,
		"set", next.SetIndex,
		"filter", next.Config.Filter.String(),
		"direction", next.Config.Direction.String(),
		"questions", next.Total(),
	)
	e.appendEvent(ctx, next, store.ActionStart, 0)
	return next, nil
}

func (e *Engine) loadSet(ctx context.Context, index int) ([]vocab.Word, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	r := vocab.SetRange(index)
	return e.words.ListAll(ctx, store.WordFilter{IDRange: &r}, e.pageSize)
}

// Commit persists every pending write one record at a time. When some
// records fail the session stays on the finish screen with Failed set,
// and a *WriteFailure lists them; calling Commit again retries only what
// is still unsaved.
func (e *Engine) Commit(ctx context.Context, s Session) (Session, error) {
	if s.Screen != ScreenFinish {
		return s, invalid(Committed{}, s.Screen)
	}

	var (
		saved  []int
		failed []int
		errs   []error
	)
	for _, w := range PendingWrites(s) {
		if err := e.write(ctx, s.ID, w); err != nil {
			failed = append(failed, w.ID)
			errs = append(errs, fmt.Errorf("word %d: %w", w.ID, err))
			continue
		}
		saved = append(saved, w.ID)
	}

	next, err := Reduce(s, Committed{Saved: saved, Failed: failed})
	if err != nil {
		return next, err
	}

	e.appendEvent(ctx, s, store.ActionCommit, len(failed))
	if len(failed) > 0 {
		e.log.Warn("commit incomplete", "session_id", s.ID, "saved", len(saved), "failed", failed)
		return next, &WriteFailure{IDs: failed, Err: errors.Join(errs...)}
	}

	e.log.Info("session committed", "session_id", s.ID, "saved", len(saved))
	return next, nil
}

func (e *Engine) write(ctx context.Context, sessionID string, w Write) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	m, fav := w.Mastery, w.IsFavorite
	err := e.words.Update(ctx, w.ID, store.WordFields{Mastery: &m, IsFavorite: &fav})
	if err != nil {
		e.log.Error("store write failed", "session_id", sessionID, "word_id", w.ID, "error", err)
	}
	return err
}

// Abandon leaves the run without writing any word.
func (e *Engine) Abandon(ctx context.Context, s Session) (Session, error) {
	next, err := Reduce(s, Abandon{})
	if err != nil {
		return next, err
	}
	if s.ID != "" && (s.InDrill() || s.Screen == ScreenFinish) {
		e.log.Info("session abandoned", "session_id", s.ID, "position", s.Position)
		e.appendEvent(ctx, s, store.ActionAbandon, 0)
	}
	return next, nil
}

// History returns the newest session events first. Without an event
// repository it returns nothing.
func (e *Engine) History(ctx context.Context, limit int) ([]store.SessionEvent, error) {
	if e.events == nil {
		return nil, nil
	}
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.events.RecentSessions(ctx, limit)
}

// appendEvent records session history. Failures are logged, never returned.
func (e *Engine) appendEvent(ctx context.Context, s Session, action store.SessionAction, failed int) {
	if e.events == nil {
		return
	}
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	sum := BuildSummary(s)
	err := e.events.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:       s.ID,
		Action:          action,
		SetIndex:        s.SetIndex,
		Direction:       s.Config.Direction.String(),
		QuestionsServed: sum.TotalQuestions,
		CorrectAnswers:  sum.TotalCorrect,
		FailedWrites:    failed,
	})
	if err != nil {
		e.log.Warn("append session event failed", "session_id", s.ID, "action", string(action), "error", err)
	}
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}
