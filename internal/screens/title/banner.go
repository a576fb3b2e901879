package title

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tangocho/internal/ui/theme"
)

const bannerArt = `
 ████████╗ █████╗ ███╗   ██╗ ██████╗  ██████╗  ██████╗██╗  ██╗ ██████╗
 ╚══██╔══╝██╔══██╗████╗  ██║██╔════╝ ██╔═══██╗██╔════╝██║  ██║██╔═══██╗
    ██║   ███████║██╔██╗ ██║██║  ███╗██║   ██║██║     ███████║██║   ██║
    ██║   ██╔══██║██║╚██╗██║██║   ██║██║   ██║██║     ██╔══██║██║   ██║
    ██║   ██║  ██║██║ ╚████║╚██████╔╝╚██████╔╝╚██████╗██║  ██║╚██████╔╝
    ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═══╝ ╚═════╝  ╚═════╝  ╚═════╝╚═╝  ╚═╝ ╚═════╝`

const bannerCompact = "単 語 帳  T A N G O C H O"

// RenderBanner returns the TANGOCHO banner styled in the primary color.
// Uses a compact fallback for terminals narrower than 74 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 74 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
