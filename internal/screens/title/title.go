package title

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tangocho/internal/screen"
	"github.com/abhisek/tangocho/internal/screens/nav"
	"github.com/abhisek/tangocho/internal/session"
	"github.com/abhisek/tangocho/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	totalDur     = 1500 * time.Millisecond
)

const cardArt = `╭──────────────╮
│              │
│   単 語 帳   │
│              │
╰──────────────╯`

var sparkleFrames = []string{"・", "＊"}

type tickMsg time.Time

// TitleScreen is the first screen. Any key starts the study flow.
type TitleScreen struct {
	deps    nav.Deps
	next    func(session.Session) screen.Screen
	elapsed time.Duration
	ticks   int
	started bool
	warning string
}

var _ screen.Screen = (*TitleScreen)(nil)

// New creates a TitleScreen that replaces itself with the screen built by
// next once the session has left the title state.
func New(deps nav.Deps, next func(session.Session) screen.Screen) *TitleScreen {
	return &TitleScreen{deps: deps, next: next}
}

func (t *TitleScreen) Title() string {
	return ""
}

func (t *TitleScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(ts time.Time) tea.Msg {
		return tickMsg(ts)
	})
}

func (t *TitleScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if t.elapsed < totalDur {
			t.elapsed += tickInterval
		}
		t.ticks++
		return t, tick()

	case tea.KeyPressMsg:
		if t.started {
			return t, nil
		}
		t.started = true
		return t, t.deps.Dispatch(session.New(), session.Start{})

	case nav.ResultMsg:
		if msg.Err != nil {
			t.started = false
			t.warning = msg.Err.Error()
			return t, nil
		}
		return t, nav.Replace(t.next(msg.Session))
	}

	return t, nil
}

func (t *TitleScreen) View(width, height int) string {
	rendered := lipgloss.NewStyle().Foreground(theme.Primary).Render(cardArt)

	if t.elapsed >= phase1End {
		sparkle := sparkleFrames[t.ticks%len(sparkleFrames)]
		s := lipgloss.NewStyle().Foreground(theme.Accent).Render(sparkle)

		lines := strings.Split(rendered, "\n")
		lines[2] = s + " " + lines[2] + " " + s
		rendered = strings.Join(lines, "\n")
	}

	sections := []string{rendered}

	if t.elapsed >= totalDur {
		sections = append(sections,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Japanese ⇄ English word drills"),
			"",
			theme.Hint.Render("press any key to start"),
		)
	}

	if t.warning != "" {
		sections = append(sections, "", theme.Warning.Render(t.warning))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
