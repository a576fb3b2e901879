package flashcard

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/tangocho/internal/screen"
	"github.com/abhisek/tangocho/internal/screens/finish"
	"github.com/abhisek/tangocho/internal/screens/nav"
	"github.com/abhisek/tangocho/internal/session"
	"github.com/abhisek/tangocho/internal/ui/components"
	"github.com/abhisek/tangocho/internal/ui/layout"
	"github.com/abhisek/tangocho/internal/ui/theme"
	"github.com/abhisek/tangocho/internal/vocab"
)

// FlashcardScreen shows one card at a time; the learner flips it and
// marks whether they knew the word.
type FlashcardScreen struct {
	deps    nav.Deps
	sess    session.Session
	busy    bool
	warning string
}

var _ screen.Screen = (*FlashcardScreen)(nil)
var _ screen.KeyHintProvider = (*FlashcardScreen)(nil)
var _ screen.BackHandler = (*FlashcardScreen)(nil)

// New creates a FlashcardScreen for a session on the flashcard screen.
func New(deps nav.Deps, s session.Session) *FlashcardScreen {
	return &FlashcardScreen{deps: deps, sess: s}
}

func (f *FlashcardScreen) Init() tea.Cmd {
	return nil
}

func (f *FlashcardScreen) Title() string {
	return fmt.Sprintf("Set %d · Flashcards", vocab.SetLabel(f.sess.SetIndex))
}

func (f *FlashcardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Space", Description: "Flip"},
		{Key: "y/n", Description: "Knew it / Didn't"},
		{Key: "f", Description: "Favorite"},
		{Key: "Esc", Description: "Quit run"},
	}
}

// Back abandons the run.
func (f *FlashcardScreen) Back() tea.Cmd {
	if f.busy {
		return nil
	}
	return f.deps.Abandon(f.sess)
}

func (f *FlashcardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case nav.ResultMsg:
		f.busy = false
		f.sess = msg.Session
		f.warning = ""
		var wf *session.WriteFailure
		switch {
		case msg.Err == nil:
		case errors.As(msg.Err, &wf):
			f.warning = "Not saved yet. It will be retried when you finish."
		default:
			f.warning = msg.Err.Error()
			return f, nil
		}
		if f.sess.Screen == session.ScreenFinish {
			return f, nav.Replace(finish.New(f.deps, f.sess))
		}
		return f, nil

	case tea.KeyMsg:
		if f.busy {
			return f, nil
		}
		switch msg.String() {
		case "space", "enter":
			f.apply(session.Flip{})
		case "f":
			f.apply(session.ToggleFavorite{Index: f.sess.Position})
		case "y", "n":
			f.busy = true
			return f, f.deps.Dispatch(f.sess, session.Mark{Correct: msg.String() == "y"})
		}
	}
	return f, nil
}

func (f *FlashcardScreen) apply(a session.Action) {
	next, err := session.Reduce(f.sess, a)
	if err != nil {
		f.warning = err.Error()
		return
	}
	f.sess = next
	f.warning = ""
}

func (f *FlashcardScreen) View(width, height int) string {
	cur, ok := f.sess.Current()
	if !ok {
		return ""
	}

	cw := components.ContentWidth(width)
	progress := float64(f.sess.Position) / float64(max(f.sess.Total(), 1))
	sections := []string{
		components.NewProgressBar(
			fmt.Sprintf("Card %d/%d", f.sess.Position+1, f.sess.Total()),
			progress, false, cw,
		).View(),
		"",
	}

	face := theme.Prompt.Render(cur.Word.SourceText)
	if f.sess.Flipped {
		face += "\n\n" + theme.Selected.Render(cur.Word.TargetText)
	} else {
		face += "\n\n" + theme.Hint.Render("space to flip")
	}
	if cur.Favorite {
		face += "\n\n" + theme.Favorite.Render("★ favorite")
	}
	sections = append(sections, components.Card(face, cw))

	if f.warning != "" {
		sections = append(sections, "", theme.Warning.Render(f.warning))
	}

	return components.Center(strings.Join(sections, "\n"), width, height)
}
