package history

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tangocho/internal/router"
	"github.com/abhisek/tangocho/internal/screen"
	"github.com/abhisek/tangocho/internal/screens/nav"
	"github.com/abhisek/tangocho/internal/store"
	"github.com/abhisek/tangocho/internal/ui/layout"
	"github.com/abhisek/tangocho/internal/ui/theme"
	"github.com/abhisek/tangocho/internal/vocab"
)

const historyLimit = 50

type historyLoadedMsg struct {
	Events []store.SessionEvent
	Err    error
}

// HistoryScreen lists recent session starts, commits and abandons.
type HistoryScreen struct {
	deps     nav.Deps
	events   []store.SessionEvent
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(deps nav.Deps) *HistoryScreen {
	return &HistoryScreen{deps: deps}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		events, err := s.deps.Engine.History(s.deps.Ctx, historyLimit)
		return historyLoadedMsg{Events: events, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.events = msg.Events
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.events) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Pick a set to start!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, ev := range s.events {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		style := lipgloss.NewStyle().Foreground(actionColor(ev.Action))
		if i == s.selected {
			style = style.Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(prefix+FormatEvent(ev))))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatEvent renders one history line.
func FormatEvent(ev store.SessionEvent) string {
	line := fmt.Sprintf("%s  %-8s set %-3d %-9s",
		ev.Timestamp.Local().Format("Jan 02 15:04"), ev.Action, vocab.SetLabel(ev.SetIndex), ev.Direction)

	switch ev.Action {
	case store.ActionStart:
		line += fmt.Sprintf("  %d questions", ev.QuestionsServed)
	default:
		line += fmt.Sprintf("  %d/%d correct", ev.CorrectAnswers, ev.QuestionsServed)
	}
	if ev.FailedWrites > 0 {
		line += fmt.Sprintf("  %d unsaved", ev.FailedWrites)
	}
	return line
}

func actionColor(a store.SessionAction) color.Color {
	switch a {
	case store.ActionCommit:
		return theme.Success
	case store.ActionAbandon:
		return theme.TextDim
	default:
		return theme.Text
	}
}
