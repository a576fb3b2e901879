package finish

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/screen"
	"github.com/abhisek/tangocho/internal/screens/nav"
	"github.com/abhisek/tangocho/internal/session"
	"github.com/abhisek/tangocho/internal/ui/components"
	"github.com/abhisek/tangocho/internal/ui/layout"
	"github.com/abhisek/tangocho/internal/ui/theme"
)

// FinishScreen shows the results of a run and commits them on Enter.
type FinishScreen struct {
	deps     nav.Deps
	sess     session.Session
	selected int
	saving   bool
	warning  string
}

var _ screen.Screen = (*FinishScreen)(nil)
var _ screen.KeyHintProvider = (*FinishScreen)(nil)
var _ screen.BackHandler = (*FinishScreen)(nil)

// New creates a FinishScreen for a session on the finish screen.
func New(deps nav.Deps, s session.Session) *FinishScreen {
	return &FinishScreen{deps: deps, sess: s}
}

func (s *FinishScreen) Init() tea.Cmd {
	return nil
}

func (s *FinishScreen) Title() string {
	return "Results"
}

func (s *FinishScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Save"},
		{Key: "↑↓", Description: "Select"},
		{Key: "f", Description: "Favorite"},
		{Key: "Esc", Description: "Discard"},
	}
}

// Back discards the results without saving.
func (s *FinishScreen) Back() tea.Cmd {
	if s.saving {
		return nil
	}
	return s.deps.Abandon(s.sess)
}

func (s *FinishScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case nav.ResultMsg:
		s.saving = false
		s.sess = msg.Session
		if msg.Err != nil {
			s.warning = commitWarning(msg.Err)
			return s, nil
		}
		return s, nav.Return(msg.Session)

	case tea.KeyMsg:
		if s.saving {
			return s, nil
		}
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < s.sess.Total()-1 {
				s.selected++
			}
		case "f":
			next, err := session.Reduce(s.sess, session.ToggleFavorite{Index: s.selected})
			if err != nil {
				s.warning = err.Error()
				return s, nil
			}
			s.sess = next
		case "enter":
			s.saving = true
			s.warning = ""
			sess := s.sess
			return s, nav.Call(func() (session.Session, error) {
				return s.deps.Engine.Commit(s.deps.Ctx, sess)
			})
		}
	}
	return s, nil
}

func commitWarning(err error) string {
	var wf *session.WriteFailure
	if errors.As(err, &wf) {
		return retryWarning(wf.IDs)
	}
	return err.Error()
}

func retryWarning(ids []int) string {
	return fmt.Sprintf("Could not save word(s) %v. Press Enter to retry.", ids)
}

func (s *FinishScreen) View(width, height int) string {
	sum := session.BuildSummary(s.sess)

	var b strings.Builder
	center := func(str string) {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, str))
		b.WriteString("\n")
	}

	center(theme.Title.Render("Run complete!"))
	b.WriteString("\n")
	center(lipgloss.NewStyle().Foreground(theme.Text).Render(fmt.Sprintf(
		"Questions: %d        Correct: %d        Accuracy: %.1f%%",
		sum.TotalQuestions, sum.TotalCorrect, sum.AccuracyPercent())))
	b.WriteString("\n")

	cw := components.ContentWidth(width)
	center(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)))

	// Keep the selected row visible when the list is taller than the screen.
	rows := max(height-10, 3)
	start := 0
	if s.selected >= rows {
		start = s.selected - rows + 1
	}
	end := min(start+rows, len(sum.Results))

	for _, r := range sum.Results[start:end] {
		center(s.renderRow(r, cw))
	}

	b.WriteString("\n")
	switch {
	case s.saving:
		center(theme.Hint.Render("Saving..."))
	case s.warning != "":
		center(theme.Warning.Render(s.warning))
	case len(s.sess.Failed) > 0:
		center(theme.Warning.Render(retryWarning(s.sess.Failed)))
	default:
		center(components.NewButton("Save results", true).View())
	}

	return b.String()
}

func (s *FinishScreen) renderRow(r session.QuestionResult, width int) string {
	mark := theme.Hint.Render("·")
	switch r.Outcome {
	case session.Correct:
		mark = theme.Correct.Render("✓")
	case session.Incorrect:
		mark = theme.Incorrect.Render("✗")
	}

	fav := " "
	if r.Favorite {
		fav = theme.Favorite.Render("★")
	}

	dir := s.sess.Config.Direction
	before, after := mastery.Level(r.Mastery, dir), mastery.Level(r.NextMastery, dir)
	level := fmt.Sprintf("%d→%d", before, after)
	if r.Transition.Changed() {
		level += " " + string(r.Transition.To)
	}

	text := fmt.Sprintf("%s %s %s → %s", mark, fav, r.Prompt, r.Expected)
	if r.Outcome == session.Incorrect && r.Answer != "" {
		text += theme.Hint.Render(" (" + r.Answer + ")")
	}

	gap := max(width-lipgloss.Width(text)-lipgloss.Width(level)-2, 1)
	line := text + strings.Repeat(" ", gap) + lipgloss.NewStyle().Foreground(theme.TextDim).Render(level)

	if r.Index == s.selected {
		return theme.Selected.Render("▸ ") + line
	}
	return "  " + line
}
