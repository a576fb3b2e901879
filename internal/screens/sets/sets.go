package sets

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/screen"
	"github.com/abhisek/tangocho/internal/screens/configure"
	"github.com/abhisek/tangocho/internal/screens/history"
	"github.com/abhisek/tangocho/internal/screens/nav"
	"github.com/abhisek/tangocho/internal/session"
	"github.com/abhisek/tangocho/internal/ui/components"
	"github.com/abhisek/tangocho/internal/ui/layout"
	"github.com/abhisek/tangocho/internal/ui/theme"
)

type setsLoadedMsg struct {
	Sets []session.SetInfo
	Err  error
}

// SetsScreen lists the 100-word sets with their mastery rates.
type SetsScreen struct {
	deps    nav.Deps
	sess    session.Session
	sets    []session.SetInfo
	menu    components.Menu
	loaded  bool
	busy    bool
	warning string
}

var _ screen.Screen = (*SetsScreen)(nil)
var _ screen.KeyHintProvider = (*SetsScreen)(nil)
var _ screen.Resumer = (*SetsScreen)(nil)

// New creates a SetsScreen for a session on the set selection screen.
func New(deps nav.Deps, s session.Session) *SetsScreen {
	return &SetsScreen{deps: deps, sess: s}
}

func (s *SetsScreen) Init() tea.Cmd {
	return s.load()
}

// Resume reloads the mastery rates after a run.
func (s *SetsScreen) Resume() tea.Cmd {
	return s.load()
}

func (s *SetsScreen) load() tea.Cmd {
	return func() tea.Msg {
		sets, err := s.deps.Engine.Sets(s.deps.Ctx)
		return setsLoadedMsg{Sets: sets, Err: err}
	}
}

func (s *SetsScreen) Title() string {
	return "Choose a set"
}

func (s *SetsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Study"},
		{Key: "h", Description: "History"},
		{Key: "r", Description: "Reload"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *SetsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case setsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.warning = msg.Err.Error()
			return s, nil
		}
		s.sets = msg.Sets
		s.buildMenu()
		return s, nil

	case nav.ReturnMsg:
		s.sess = msg.Session
		return s, nil

	case nav.ResultMsg:
		s.busy = false
		if msg.Err != nil {
			s.warning = pickWarning(msg.Err)
			return s, nil
		}
		s.warning = ""
		return s, nav.Push(configure.New(s.deps, msg.Session))

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "h":
			return s, nav.Push(history.New(s.deps))
		case "r":
			s.warning = ""
			return s, s.load()
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func pickWarning(err error) string {
	var rf *session.ReadFailure
	switch {
	case errors.As(err, &rf):
		return "Could not load the set. Press r to reload."
	case errors.Is(err, session.ErrInvalidSet):
		return "That set has no words."
	default:
		return err.Error()
	}
}

func (s *SetsScreen) buildMenu() {
	selected := s.menu.Selected
	items := make([]components.MenuItem, len(s.sets))
	for i, info := range s.sets {
		index := info.Index
		items[i] = components.MenuItem{
			Label:  fmt.Sprintf("Set %-3d", info.Label()),
			Detail: Describe(info),
			Action: func() tea.Cmd {
				s.busy = true
				return s.deps.Dispatch(s.sess, session.PickSet{Index: index})
			},
		}
	}
	s.menu = components.NewMenu(items)
	if selected < len(items) {
		s.menu.Selected = selected
	}
}

// Describe summarizes one set for the menu and the CLI.
func Describe(info session.SetInfo) string {
	recall := mastery.ProgressRate(info.RecallMastered, info.Words)
	recognize := mastery.ProgressRate(info.RecognizeMastered, info.Words)
	return fmt.Sprintf("%3d words   recall %3.0f%%   recognize %3.0f%%",
		info.Words, recall*100, recognize*100)
}

func (s *SetsScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading sets...")
	}
	if len(s.sets) == 0 && s.warning == "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No words yet. Import some with `tangocho migrate`.")
	}

	cw := components.ContentWidth(width)
	var sections []string

	// Keep the selected set visible when the list is taller than the screen.
	visible := max(height-8, 3)
	menu := s.menu
	start := 0
	if menu.Selected >= visible {
		start = menu.Selected - visible + 1
	}
	end := min(start+visible, len(menu.Items))
	lines := strings.Split(strings.TrimRight(menu.View(), "\n"), "\n")
	if len(lines) > 0 && end <= len(lines) {
		sections = append(sections, strings.Join(lines[start:end], "\n"))
	}

	if menu.Selected < len(s.sets) {
		info := s.sets[menu.Selected]
		sections = append(sections, "",
			components.NewProgressBar("recall   ", mastery.ProgressRate(info.RecallMastered, info.Words), true, cw).View(),
			components.NewProgressBar("recognize", mastery.ProgressRate(info.RecognizeMastered, info.Words), true, cw).View(),
		)
	}

	if s.warning != "" {
		sections = append(sections, "", theme.Warning.Render(s.warning))
	}

	return components.Center(strings.Join(sections, "\n"), width, height)
}
