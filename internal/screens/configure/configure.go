package configure

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/screen"
	"github.com/abhisek/tangocho/internal/screens/flashcard"
	"github.com/abhisek/tangocho/internal/screens/nav"
	"github.com/abhisek/tangocho/internal/screens/quiz"
	"github.com/abhisek/tangocho/internal/selector"
	"github.com/abhisek/tangocho/internal/session"
	"github.com/abhisek/tangocho/internal/ui/components"
	"github.com/abhisek/tangocho/internal/ui/layout"
	"github.com/abhisek/tangocho/internal/ui/theme"
	"github.com/abhisek/tangocho/internal/vocab"
)

var (
	filters    = []selector.Filter{selector.All, selector.Unlearned, selector.Favorites}
	directions = []mastery.Direction{mastery.Recall, mastery.Recognize}
)

const (
	fieldFilter = iota
	fieldDirection
	fieldCount
	numFields
)

// ConfigureScreen collects filter, direction and question count, then
// draws the questions.
type ConfigureScreen struct {
	deps      nav.Deps
	sess      session.Session
	filter    components.Choice
	direction components.Choice
	count     components.TextInput
	focus     int
	busy      bool
	warning   string
}

var _ screen.Screen = (*ConfigureScreen)(nil)
var _ screen.KeyHintProvider = (*ConfigureScreen)(nil)
var _ screen.BackHandler = (*ConfigureScreen)(nil)

// New creates a ConfigureScreen for a session on the configure screen.
// Fields start from the session's last config, or deps.Defaults.
func New(deps nav.Deps, s session.Session) *ConfigureScreen {
	cfg := s.Config
	if cfg.Count <= 0 {
		cfg = deps.Defaults
	}
	if cfg.Count <= 0 {
		cfg.Count = 10
	}

	c := &ConfigureScreen{
		deps:      deps,
		sess:      s,
		filter:    components.NewChoice("Words", filterLabels(), indexOf(filters, cfg.Filter)),
		direction: components.NewChoice("Mode", directionLabels(), indexOf(directions, cfg.Direction)),
		count:     components.NewTextInput("10", true, 3),
	}
	c.count.SetValue(strconv.Itoa(cfg.Count))
	c.setFocus(fieldFilter)
	return c
}

func filterLabels() []string {
	return []string{"all", "unlearned", "favorites"}
}

func directionLabels() []string {
	return []string{"quiz (type the answer)", "flashcards"}
}

func indexOf[T comparable](xs []T, x T) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return 0
}

func (c *ConfigureScreen) Init() tea.Cmd {
	return nil
}

func (c *ConfigureScreen) Title() string {
	return fmt.Sprintf("Set %d", vocab.SetLabel(c.sess.SetIndex))
}

func (c *ConfigureScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Field"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

// Back returns to set selection without starting a run.
func (c *ConfigureScreen) Back() tea.Cmd {
	if c.busy {
		return nil
	}
	return c.deps.Abandon(c.sess)
}

func (c *ConfigureScreen) setFocus(f int) {
	c.focus = (f + numFields) % numFields
	c.filter.Focused = c.focus == fieldFilter
	c.direction.Focused = c.focus == fieldDirection
	if c.focus == fieldCount {
		c.count.Model.Focus()
	} else {
		c.count.Model.Blur()
	}
}

// Selected returns the config currently shown. The count is 0 when the
// field does not hold a number.
func (c *ConfigureScreen) Selected() session.Config {
	n, err := c.count.NumericValue()
	if err != nil {
		n = 0
	}
	return session.Config{
		Filter:    filters[c.filter.Selected],
		Direction: directions[c.direction.Selected],
		Count:     n,
	}
}

func (c *ConfigureScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case nav.ResultMsg:
		c.busy = false
		c.sess = msg.Session
		if msg.Err != nil {
			c.warning = c.sess.Warning
			if c.warning == "" {
				c.warning = msg.Err.Error()
			}
			return c, nil
		}
		if c.sess.Screen == session.ScreenFlashcard {
			return c, nav.Replace(flashcard.New(c.deps, c.sess))
		}
		return c, nav.Replace(quiz.New(c.deps, c.sess))

	case tea.KeyMsg:
		if c.busy {
			return c, nil
		}
		switch msg.String() {
		case "up", "shift+tab":
			c.setFocus(c.focus - 1)
			return c, nil
		case "down", "tab":
			c.setFocus(c.focus + 1)
			return c, nil
		case "enter":
			return c, c.begin()
		}

		var cmd tea.Cmd
		switch c.focus {
		case fieldFilter:
			c.filter, cmd = c.filter.Update(msg)
		case fieldDirection:
			c.direction, cmd = c.direction.Update(msg)
		case fieldCount:
			c.count, cmd = c.count.Update(msg)
		}
		return c, cmd
	}
	return c, nil
}

// begin records the config and draws the questions in one command.
func (c *ConfigureScreen) begin() tea.Cmd {
	c.busy = true
	c.warning = ""
	cfg := c.Selected()
	s := c.sess
	return nav.Call(func() (session.Session, error) {
		next, err := c.deps.Engine.Dispatch(c.deps.Ctx, s, session.Configure{
			Filter:    cfg.Filter,
			Count:     cfg.Count,
			Direction: cfg.Direction,
		})
		if err != nil {
			return next, err
		}
		return c.deps.Engine.Begin(c.deps.Ctx, next, nil)
	})
}

func (c *ConfigureScreen) View(width, height int) string {
	countLabel := lipgloss.NewStyle().Foreground(theme.TextDim).Width(12)
	prefix := "  "
	if c.focus == fieldCount {
		countLabel = countLabel.Foreground(theme.Primary).Bold(true)
		prefix = "▸ "
	}

	rows := []string{
		theme.Title.Render(fmt.Sprintf("Set %d", vocab.SetLabel(c.sess.SetIndex))),
		"",
		c.filter.View(),
		"",
		c.direction.View(),
		"",
		prefix + countLabel.Render("Questions") + c.count.View(),
		"",
	}

	switch {
	case c.busy:
		rows = append(rows, theme.Hint.Render("Loading words..."))
	case c.warning != "":
		rows = append(rows, theme.Warning.Render(c.warning))
	default:
		rows = append(rows, components.NewButton("Start", true).View())
	}

	return components.Center(strings.Join(rows, "\n"), width, height)
}
