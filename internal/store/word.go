package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/vocab"
)

const (
	wordsTable = "words"

	colID         = "id"
	colSourceText = "source_text"
	colTargetText = "target_text"
	colMastery    = "mastery"
	colFavorite   = "is_favorite"

	upsertBatchSize = 500
)

var wordColumns = []string{colID, colSourceText, colTargetText, colMastery, colFavorite}

type wordRepo struct {
	db      *sql.DB
	dialect string
}

func (r *wordRepo) List(ctx context.Context, f WordFilter) ([]vocab.Word, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)

	sel := entsql.Dialect(r.dialect).
		Select(wordColumns...).
		From(entsql.Table(wordsTable)).
		OrderBy(entsql.Asc(colID)).
		Limit(limit)
	if p := f.predicate(true); p != nil {
		sel.Where(p)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query words: %w", err)
	}
	defer rows.Close()

	var words []vocab.Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate words: %w", err)
	}
	return words, nil
}

func (r *wordRepo) ListAll(ctx context.Context, f WordFilter, pageSize int) ([]vocab.Word, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)

	var all []vocab.Word
	page := f
	page.Limit = pageSize
	for {
		words, err := r.List(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, words...)
		if len(words) < pageSize {
			return all, nil
		}
		last := words[len(words)-1].ID
		page.AfterID = &last
	}
}

func (r *wordRepo) Update(ctx context.Context, id int, fields WordFields) error {
	if fields.Mastery == nil && fields.IsFavorite == nil {
		return ErrNoFields
	}

	upd := entsql.Dialect(r.dialect).
		Update(wordsTable).
		Where(entsql.EQ(colID, id))
	if fields.Mastery != nil {
		if !vocab.ValidMastery(*fields.Mastery) {
			return fmt.Errorf("%w: word %d mastery %d", vocab.ErrInvalidWord, id, *fields.Mastery)
		}
		upd.Set(colMastery, *fields.Mastery)
	}
	if fields.IsFavorite != nil {
		upd.Set(colFavorite, *fields.IsFavorite)
	}

	query, args := upd.Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update word %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update word %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

func (r *wordRepo) Count(ctx context.Context, f WordFilter) (int, error) {
	sel := entsql.Dialect(r.dialect).
		Select(entsql.Count("*")).
		From(entsql.Table(wordsTable))
	if p := f.predicate(false); p != nil {
		sel.Where(p)
	}

	query, args := sel.Query()
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count words: %w", err)
	}
	return n, nil
}

func (r *wordRepo) Upsert(ctx context.Context, words []vocab.Word) error {
	for _, w := range words {
		if err := w.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(words); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(words))

		ins := entsql.Dialect(r.dialect).
			Insert(wordsTable).
			Columns(wordColumns...)
		for _, w := range words[start:end] {
			ins.Values(w.ID, w.SourceText, w.TargetText, w.Mastery, w.IsFavorite)
		}
		ins.OnConflict(
			entsql.ConflictColumns(colID),
			entsql.ResolveWithNewValues(),
		)

		query, args := ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert words %d..%d: %w", start, end-1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

func (r *wordRepo) MaxID(ctx context.Context) (int, bool, error) {
	query, args := entsql.Dialect(r.dialect).
		Select(entsql.Max(colID)).
		From(entsql.Table(wordsTable)).
		Query()

	var id sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("max word id: %w", err)
	}
	if !id.Valid {
		return 0, false, nil
	}
	return int(id.Int64), true, nil
}

// predicate builds the WHERE clause. Paging is only applied to listings.
func (f WordFilter) predicate(paged bool) *entsql.Predicate {
	var preds []*entsql.Predicate
	if f.IDRange != nil {
		preds = append(preds,
			entsql.GTE(colID, f.IDRange.From),
			entsql.LT(colID, f.IDRange.To),
		)
	}
	if f.Level != nil {
		preds = append(preds, levelPredicate(*f.Level))
	}
	if f.Favorite != nil {
		preds = append(preds, entsql.EQ(colFavorite, *f.Favorite))
	}
	if paged && f.AfterID != nil {
		preds = append(preds, entsql.GT(colID, *f.AfterID))
	}

	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	default:
		return entsql.And(preds...)
	}
}

func levelPredicate(p LevelPredicate) *entsql.Predicate {
	expr := colMastery + " % 10"
	if p.Direction == mastery.Recognize {
		expr = colMastery + " / 10"
	}
	op := p.Op
	switch op {
	case LevelEq, LevelLt, LevelGte:
	default:
		op = LevelEq
	}
	return entsql.ExprP(fmt.Sprintf("(%s) %s ?", expr, op), p.Level)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanWord reads a row and rejects records with missing fields.
func scanWord(rows rowScanner) (vocab.Word, error) {
	var (
		id       int
		source   sql.NullString
		target   sql.NullString
		mast     sql.NullInt64
		favorite sql.NullBool
	)
	if err := rows.Scan(&id, &source, &target, &mast, &favorite); err != nil {
		return vocab.Word{}, fmt.Errorf("scan word: %w", err)
	}
	if !source.Valid || !target.Valid || !mast.Valid {
		return vocab.Word{}, fmt.Errorf("%w: word %d has NULL fields", ErrInvalidRecord, id)
	}

	w := vocab.Word{
		ID:         id,
		SourceText: source.String,
		TargetText: target.String,
		Mastery:    int(mast.Int64),
		IsFavorite: favorite.Valid && favorite.Bool,
	}
	if err := w.Validate(); err != nil {
		return vocab.Word{}, errors.Join(ErrInvalidRecord, err)
	}
	return w, nil
}
