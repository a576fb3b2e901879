package quiz

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tangocho/internal/screen"
	"github.com/abhisek/tangocho/internal/screens/finish"
	"github.com/abhisek/tangocho/internal/screens/nav"
	"github.com/abhisek/tangocho/internal/session"
	"github.com/abhisek/tangocho/internal/ui/components"
	"github.com/abhisek/tangocho/internal/ui/layout"
	"github.com/abhisek/tangocho/internal/ui/theme"
	"github.com/abhisek/tangocho/internal/vocab"
)

// QuizScreen asks for the typed answer to each question in turn.
type QuizScreen struct {
	deps    nav.Deps
	sess    session.Session
	input   components.TextInput
	busy    bool
	warning string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.BackHandler = (*QuizScreen)(nil)

// New creates a QuizScreen for a session on the quiz screen.
func New(deps nav.Deps, s session.Session) *QuizScreen {
	return &QuizScreen{
		deps:  deps,
		sess:  s,
		input: components.NewTextInput("type the English word", false, 64),
	}
}

func (q *QuizScreen) Init() tea.Cmd {
	return nil
}

func (q *QuizScreen) Title() string {
	return fmt.Sprintf("Set %d · Quiz", vocab.SetLabel(q.sess.SetIndex))
}

func (q *QuizScreen) KeyHints() []layout.KeyHint {
	if q.judged() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "f", Description: "Favorite"},
			{Key: "Esc", Description: "Quit run"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+F", Description: "Favorite"},
		{Key: "Esc", Description: "Quit run"},
	}
}

// Back abandons the run.
func (q *QuizScreen) Back() tea.Cmd {
	if q.busy {
		return nil
	}
	return q.deps.Abandon(q.sess)
}

func (q *QuizScreen) judged() bool {
	cur, ok := q.sess.Current()
	return ok && cur.Outcome != session.Pending
}

func (q *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case nav.ResultMsg:
		return q, q.handleResult(msg)
	case tea.KeyMsg:
		if q.busy {
			return q, nil
		}
		return q, q.handleKey(msg)
	}
	return q, nil
}

func (q *QuizScreen) handleResult(msg nav.ResultMsg) tea.Cmd {
	q.busy = false
	q.sess = msg.Session
	q.warning = q.sess.Warning

	var wf *session.WriteFailure
	switch {
	case msg.Err == nil:
	case errors.As(msg.Err, &wf):
		q.warning = "Not saved yet. It will be retried when you finish."
	case errors.Is(msg.Err, session.ErrEmptyAnswer):
		return nil
	default:
		q.warning = msg.Err.Error()
		return nil
	}

	if cur, ok := q.sess.Current(); ok && cur.Outcome != session.Pending {
		q.input.Judge(cur.Outcome == session.Correct)
	}
	return nil
}

func (q *QuizScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if key == "ctrl+f" || (key == "f" && q.judged()) {
		q.apply(session.ToggleFavorite{Index: q.sess.Position})
		return nil
	}

	if q.judged() {
		if key != "enter" {
			return nil
		}
		q.apply(session.Next{})
		if q.sess.Screen == session.ScreenFinish {
			return nav.Replace(finish.New(q.deps, q.sess))
		}
		q.input.Reset()
		return nil
	}

	if key == "enter" {
		q.busy = true
		return q.deps.Dispatch(q.sess, session.Submit{Answer: q.input.Value()})
	}

	var cmd tea.Cmd
	q.input, cmd = q.input.Update(msg)
	q.apply(session.Edit{Text: q.input.Value()})
	return cmd
}

// apply runs a pure transition that needs no store access.
func (q *QuizScreen) apply(a session.Action) {
	next, err := session.Reduce(q.sess, a)
	if err != nil {
		q.warning = err.Error()
		return
	}
	q.sess = next
	q.warning = ""
}

func (q *QuizScreen) View(width, height int) string {
	cur, ok := q.sess.Current()
	if !ok {
		return ""
	}

	cw := components.ContentWidth(width)
	var sections []string

	progress := float64(q.sess.Position) / float64(max(q.sess.Total(), 1))
	sections = append(sections,
		components.NewProgressBar(
			fmt.Sprintf("Question %d/%d", q.sess.Position+1, q.sess.Total()),
			progress, false, cw,
		).View(),
		"",
	)

	prompt := theme.Prompt.Render(cur.Word.SourceText)
	if cur.Favorite {
		prompt += " " + theme.Favorite.Render("★")
	}
	hint := theme.Hint.Render("hint: " + vocab.Hint(cur.Word.TargetText))
	sections = append(sections, components.Card(prompt+"\n\n"+hint, cw), "")

	sections = append(sections, q.input.View())

	switch cur.Outcome {
	case session.Correct:
		sections = append(sections, "", theme.Correct.Render("✓ Correct!"))
	case session.Incorrect:
		sections = append(sections, "",
			theme.Incorrect.Render("✗ Not quite. ")+
				lipgloss.NewStyle().Foreground(theme.Text).Render("Answer: "+cur.Word.TargetText))
	}

	if q.warning != "" {
		sections = append(sections, "", theme.Warning.Render(q.warning))
	}

	return components.Center(strings.Join(sections, "\n"), width, height)
}
