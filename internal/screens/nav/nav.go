// Package nav holds what the study screens share: engine access, the
// result message for engine calls run as commands, and the navigation
// commands between screens.
package nav

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/tangocho/internal/logger"
	"github.com/abhisek/tangocho/internal/router"
	"github.com/abhisek/tangocho/internal/screen"
	"github.com/abhisek/tangocho/internal/session"
)

// Deps are handed from screen to screen.
type Deps struct {
	Ctx    context.Context
	Engine *session.Engine
	Log    *logger.Logger

	// Defaults preselects the configure screen.
	Defaults session.Config
}

// ResultMsg carries the outcome of an engine call made inside a command.
type ResultMsg struct {
	Session session.Session
	Err     error
}

// ReturnMsg is delivered to the set screen after a run ends.
type ReturnMsg struct {
	Session session.Session
}

// Call runs fn as a command and wraps its result in a ResultMsg.
func Call(fn func() (session.Session, error)) tea.Cmd {
	return func() tea.Msg {
		s, err := fn()
		return ResultMsg{Session: s, Err: err}
	}
}

// Dispatch runs a learner action through the engine as a command.
func (d Deps) Dispatch(s session.Session, a session.Action) tea.Cmd {
	return Call(func() (session.Session, error) {
		return d.Engine.Dispatch(d.Ctx, s, a)
	})
}

// Replace swaps the active screen.
func Replace(next screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

// Push opens next on top of the active screen.
func Push(next screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

// Return pops back to the set screen and hands it s.
func Return(s session.Session) tea.Cmd {
	return tea.Sequence(
		func() tea.Msg { return router.PopScreenMsg{} },
		func() tea.Msg { return ReturnMsg{Session: s} },
	)
}

// Abandon drops the run through the engine and returns to the set screen.
func (d Deps) Abandon(s session.Session) tea.Cmd {
	return func() tea.Msg {
		next, err := d.Engine.Abandon(d.Ctx, s)
		if err != nil {
			d.Log.Warn("abandon rejected", "screen", s.Screen.String(), "error", err)
		}
		return Return(next)()
	}
}
