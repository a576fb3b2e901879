package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tangocho/internal/ui/theme"
)

// Choice is a single-line option picker cycled with left/right.
type Choice struct {
	Label    string
	Options  []string
	Selected int
	Focused  bool
}

// NewChoice creates a picker with the option at selected preselected.
func NewChoice(label string, options []string, selected int) Choice {
	if selected < 0 || selected >= len(options) {
		selected = 0
	}
	return Choice{
		Label:    label,
		Options:  options,
		Selected: selected,
	}
}

// Update handles left/right selection while focused.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	if !c.Focused || len(c.Options) == 0 {
		return c, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch kmsg.String() {
	case "left", "h":
		c.Selected = (c.Selected - 1 + len(c.Options)) % len(c.Options)
	case "right", "l", "space":
		c.Selected = (c.Selected + 1) % len(c.Options)
	}
	return c, nil
}

// View renders the label followed by every option, highlighting the
// selected one.
func (c Choice) View() string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.TextDim).Width(12)
	if c.Focused {
		labelStyle = labelStyle.Foreground(theme.Primary).Bold(true)
	}

	parts := make([]string, 0, len(c.Options))
	for i, opt := range c.Options {
		if i == c.Selected {
			parts = append(parts, theme.Selected.Render("["+opt+"]"))
		} else {
			parts = append(parts, lipgloss.NewStyle().Foreground(theme.TextDim).Render(" "+opt+" "))
		}
	}

	prefix := "  "
	if c.Focused {
		prefix = "▸ "
	}
	return prefix + labelStyle.Render(c.Label) + strings.Join(parts, " ")
}
