package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const sessionEventsTable = "session_events"

type eventRepo struct {
	db      *sql.DB
	dialect string
	seq     *sequenceCounter
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(sessionEventsTable).
		Columns("sequence", "timestamp", "session_id", "action", "set_index",
			"direction", "questions_served", "correct_answers", "failed_writes").
		Values(seqNum, time.Now().UTC(), data.SessionID, string(data.Action), data.SetIndex,
			data.Direction, data.QuestionsServed, data.CorrectAnswers, data.FailedWrites).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentSessions(ctx context.Context, limit int) ([]SessionEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args := entsql.Dialect(r.dialect).
		Select("sequence", "timestamp", "session_id", "action", "set_index",
			"direction", "questions_served", "correct_answers", "failed_writes").
		From(entsql.Table(sessionEventsTable)).
		OrderBy(entsql.Desc("sequence")).
		Limit(limit).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var events []SessionEvent
	for rows.Next() {
		var (
			e      SessionEvent
			action string
		)
		if err := rows.Scan(&e.Sequence, &e.Timestamp, &e.SessionID, &action, &e.SetIndex,
			&e.Direction, &e.QuestionsServed, &e.CorrectAnswers, &e.FailedWrites); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		e.Action = SessionAction(action)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session events: %w", err)
	}
	return events, nil
}
