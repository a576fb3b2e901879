// Package screentest wires the study screens to a throwaway in-memory
// store for screen tests.
package screentest

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/tangocho/internal/logger"
	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/screens/nav"
	"github.com/abhisek/tangocho/internal/selector"
	"github.com/abhisek/tangocho/internal/session"
	"github.com/abhisek/tangocho/internal/store"
	"github.com/abhisek/tangocho/internal/vocab"
)

// Words is a small fixture set in the first set.
func Words() []vocab.Word {
	return []vocab.Word{
		{ID: 1, SourceText: "犬", TargetText: "dog", Mastery: 0},
		{ID: 2, SourceText: "猫", TargetText: "cat", Mastery: 20},
		{ID: 3, SourceText: "鳥", TargetText: "bird", Mastery: 2, IsFavorite: true},
	}
}

// Deps opens a fresh store seeded with words and returns screen deps
// backed by it. The store is closed when the test ends.
func Deps(t testing.TB, words ...vocab.Word) (nav.Deps, *store.Store) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	if len(words) > 0 {
		if err := st.WordRepo().Upsert(ctx, words); err != nil {
			t.Fatalf("seed words: %v", err)
		}
	}

	log := logger.Nop()
	return nav.Deps{
		Ctx: ctx,
		Engine: session.NewEngine(session.Options{
			Words:  st.WordRepo(),
			Events: st.EventRepo(),
			Logger: log,
		}),
		Log:      log,
		Defaults: session.Config{Filter: selector.All, Count: 10, Direction: mastery.Recall},
	}, st
}

// Drive runs actions through the engine from the title screen and fails
// the test on the first rejected one.
func Drive(t testing.TB, deps nav.Deps, actions ...session.Action) session.Session {
	t.Helper()
	s := session.New()
	for _, a := range actions {
		var err error
		if s, err = deps.Engine.Dispatch(deps.Ctx, s, a); err != nil {
			t.Fatalf("dispatch %T: %v", a, err)
		}
	}
	return s
}

// Begin drives a session up to the first question.
func Begin(t testing.TB, deps nav.Deps, cfg session.Config) session.Session {
	t.Helper()
	s := Drive(t, deps,
		session.Start{},
		session.PickSet{Index: 0},
		session.Configure{Filter: cfg.Filter, Count: cfg.Count, Direction: cfg.Direction},
	)
	s, err := deps.Engine.Begin(deps.Ctx, s, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return s
}

// Word reads one stored word back.
func Word(t testing.TB, st *store.Store, id int) vocab.Word {
	t.Helper()
	r := vocab.IDRange{From: id, To: id + 1}
	words, err := st.WordRepo().List(context.Background(), store.WordFilter{IDRange: &r})
	if err != nil || len(words) != 1 {
		t.Fatalf("read word %d: %v (%d rows)", id, err, len(words))
	}
	return words[0]
}

// Key builds a key press for a printable rune.
func Key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// Enter builds an Enter key press.
func Enter() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeyEnter}
}
