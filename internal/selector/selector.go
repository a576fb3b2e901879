package selector

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/vocab"
)

var (
	// ErrEmptySelection means the filter left no candidates in the pool.
	ErrEmptySelection = errors.New("no words match the selected filter")

	// ErrInvalidCount means a non-positive question count was requested.
	ErrInvalidCount = errors.New("question count must be positive")
)

// Filter narrows a set's pool before drawing questions.
type Filter int

const (
	All       Filter = iota // every word in the set
	Unlearned               // level below mastered in the study direction
	Favorites               // words flagged as favorite
)

func (f Filter) String() string {
	switch f {
	case All:
		return "all"
	case Unlearned:
		return "unlearned"
	case Favorites:
		return "favorites"
	default:
		return fmt.Sprintf("filter(%d)", int(f))
	}
}

// ParseFilter maps a config/CLI name to a Filter.
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "all":
		return All, nil
	case "unlearned":
		return Unlearned, nil
	case "favorites":
		return Favorites, nil
	}
	return All, fmt.Errorf("unknown filter %q", s)
}

// Match reports whether w passes the filter for the given direction.
func (f Filter) Match(w vocab.Word, dir mastery.Direction) bool {
	switch f {
	case Unlearned:
		return mastery.Level(w.Mastery, dir) < mastery.MaxLevel
	case Favorites:
		return w.IsFavorite
	default:
		return true
	}
}

// Select filters pool and draws min(count, len(filtered)) words without
// replacement in random order. A nil rng uses the global source.
// The returned slice never aliases pool.
func Select(pool []vocab.Word, f Filter, dir mastery.Direction, count int, rng *rand.Rand) ([]vocab.Word, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}

	filtered := make([]vocab.Word, 0, len(pool))
	for _, w := range pool {
		if f.Match(w, dir) {
			filtered = append(filtered, w)
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w (filter %s)", ErrEmptySelection, f)
	}

	swap := func(i, j int) { filtered[i], filtered[j] = filtered[j], filtered[i] }
	if rng != nil {
		rng.Shuffle(len(filtered), swap)
	} else {
		rand.Shuffle(len(filtered), swap)
	}

	n := min(count, len(filtered))
	return filtered[:n:n], nil
}
