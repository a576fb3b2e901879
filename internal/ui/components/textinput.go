package components

import (
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tangocho/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with Tangocho styling.
type TextInput struct {
	Model       textinput.Model
	NumericOnly bool
	judged      bool
	correct     bool
}

// NewTextInput creates a new focused text input.
func NewTextInput(placeholder string, numericOnly bool, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if charLimit > 0 {
		ti.CharLimit = charLimit
	}

	return TextInput{
		Model:       ti,
		NumericOnly: numericOnly,
	}
}

// Update handles messages. Non-digit runes are dropped in numeric mode
// and all input is ignored once judged.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if t.judged {
			return t, nil
		}
		if t.NumericOnly {
			key := kmsg.String()
			if len(key) == 1 && (key[0] < '0' || key[0] > '9') {
				return t, nil
			}
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input with a verdict mark once judged.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.judged {
		if t.correct {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the current input value.
func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
}

// NumericValue returns the input value as an integer.
func (t TextInput) NumericValue() (int, error) {
	return strconv.Atoi(t.Model.Value())
}

// Judge freezes the input and shows a verdict mark.
func (t *TextInput) Judge(correct bool) {
	t.judged = true
	t.correct = correct
}

// Judged reports whether Judge was called since the last Reset.
func (t TextInput) Judged() bool {
	return t.judged
}

// Reset clears the value and verdict for the next question.
func (t *TextInput) Reset() {
	t.Model.Reset()
	t.judged = false
	t.correct = false
}
