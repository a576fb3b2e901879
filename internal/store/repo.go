package store

import (
	"context"
	"time"

	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/vocab"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 500
)

// LevelOp compares a direction's mastery level against a constant.
type LevelOp string

const (
	LevelEq  LevelOp = "="
	LevelLt  LevelOp = "<"
	LevelGte LevelOp = ">="
)

// LevelPredicate matches words by one direction's mastery level.
type LevelPredicate struct {
	Direction mastery.Direction
	Op        LevelOp
	Level     int
}

// WordFilter narrows word reads. Zero-value fields do not filter.
type WordFilter struct {
	IDRange  *vocab.IDRange
	Level    *LevelPredicate
	Favorite *bool

	// AfterID resumes a listing after the last id of the previous page.
	AfterID *int
	// Limit caps a single page (0 = DefaultPageSize, capped at MaxPageSize).
	Limit int
}

// WordFields names the mutable fields of a word. Nil fields are left alone.
type WordFields struct {
	Mastery    *int
	IsFavorite *bool
}

// WordRepo is the durable word collection the study flow reads and updates.
type WordRepo interface {
	// List returns one page of words ordered by id.
	List(ctx context.Context, f WordFilter) ([]vocab.Word, error)

	// ListAll pages through every word matching f.
	ListAll(ctx context.Context, f WordFilter, pageSize int) ([]vocab.Word, error)

	// Update writes the given fields of a single word.
	Update(ctx context.Context, id int, fields WordFields) error

	// Count returns the number of words matching f. Paging fields are ignored.
	Count(ctx context.Context, f WordFilter) (int, error)

	// Upsert inserts or replaces words after validating every record.
	Upsert(ctx context.Context, words []vocab.Word) error

	// MaxID returns the highest id, or ok=false when the collection is empty.
	MaxID(ctx context.Context) (id int, ok bool, err error)
}

// SessionAction is the lifecycle step a session event records.
type SessionAction string

const (
	ActionStart   SessionAction = "start"
	ActionCommit  SessionAction = "commit"
	ActionAbandon SessionAction = "abandon"
)

// SessionEventData captures the data for a single session lifecycle event.
type SessionEventData struct {
	SessionID       string
	Action          SessionAction
	SetIndex        int
	Direction       string
	QuestionsServed int
	CorrectAnswers  int
	FailedWrites    int
}

// SessionEvent is a stored session lifecycle event.
type SessionEvent struct {
	SessionEventData
	Sequence  int64
	Timestamp time.Time
}

// EventRepo provides append access to session history.
type EventRepo interface {
	// AppendSessionEvent records a session lifecycle event.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// RecentSessions returns the newest events first.
	RecentSessions(ctx context.Context, limit int) ([]SessionEvent, error)
}
