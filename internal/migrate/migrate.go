// Package migrate copies words from the legacy single-direction schema
// into the word store, converting progression into packed mastery.
package migrate

import (
	"context"
	"fmt"

	"github.com/abhisek/tangocho/internal/logger"
	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/store"
	"github.com/abhisek/tangocho/internal/vocab"
)

// DefaultBatch is the number of words upserted per transaction.
const DefaultBatch = 500

// Source yields legacy rows. *store.LegacyReader implements it.
type Source interface {
	ReadAll(ctx context.Context, pageSize int) ([]store.LegacyWord, error)
}

// Options controls a migration run.
type Options struct {
	Batch  int
	DryRun bool
	Log    *logger.Logger
}

// Skipped is a legacy row that could not be converted.
type Skipped struct {
	ID  int
	Err error
}

// Report summarizes a migration run.
type Report struct {
	Read     int
	Migrated int
	Skipped  []Skipped
}

// Convert maps one legacy row onto a word.
func Convert(lw store.LegacyWord) (vocab.Word, error) {
	if lw.NoProgression {
		return vocab.Word{}, fmt.Errorf("%w: missing", mastery.ErrInvalidProgression)
	}
	m, err := mastery.FromProgression(lw.Progression)
	if err != nil {
		return vocab.Word{}, err
	}
	w := vocab.Word{
		ID:         lw.ID,
		SourceText: lw.JP,
		TargetText: lw.EN,
		Mastery:    m,
		IsFavorite: lw.Favorite,
	}
	if err := w.Validate(); err != nil {
		return vocab.Word{}, err
	}
	return w, nil
}

// Run reads every legacy row, converts it and upserts the valid ones in
// batches. Invalid rows are skipped and listed in the report; a store
// failure stops the run.
func Run(ctx context.Context, src Source, dst store.WordRepo, opts Options) (Report, error) {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	batch := opts.Batch
	if batch <= 0 {
		batch = DefaultBatch
	}

	var report Report
	rows, err := src.ReadAll(ctx, store.MaxPageSize)
	if err != nil {
		return report, fmt.Errorf("read legacy words: %w", err)
	}
	report.Read = len(rows)

	words := make([]vocab.Word, 0, len(rows))
	for _, lw := range rows {
		w, err := Convert(lw)
		if err != nil {
			log.Warn("skipping legacy word", "word_id", lw.ID, "error", err)
			report.Skipped = append(report.Skipped, Skipped{ID: lw.ID, Err: err})
			continue
		}
		words = append(words, w)
	}

	if opts.DryRun {
		report.Migrated = len(words)
		return report, nil
	}

	for start := 0; start < len(words); start += batch {
		end := min(start+batch, len(words))
		if err := dst.Upsert(ctx, words[start:end]); err != nil {
			return report, fmt.Errorf("upsert words %d..%d: %w", words[start].ID, words[end-1].ID, err)
		}
		report.Migrated += end - start
		log.Debug("migrated batch", "from", words[start].ID, "to", words[end-1].ID)
	}

	log.Info("migration finished", "read", report.Read, "migrated", report.Migrated, "skipped", len(report.Skipped))
	return report, nil
}
