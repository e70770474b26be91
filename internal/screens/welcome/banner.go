package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/brainkit/internal/ui/theme"
)

const bannerArt = `
 ██████╗ ██████╗  █████╗ ██╗███╗   ██╗██╗  ██╗██╗████████╗
 ██╔══██╗██╔══██╗██╔══██╗██║████╗  ██║██║ ██╔╝██║╚══██╔══╝
 ██████╔╝██████╔╝███████║██║██╔██╗ ██║█████╔╝ ██║   ██║
 ██╔══██╗██╔══██╗██╔══██║██║██║╚██╗██║██╔═██╗ ██║   ██║
 ██████╔╝██║  ██║██║  ██║██║██║ ╚████║██║  ██╗██║   ██║
 ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝╚═╝   ╚═╝`

const bannerCompact = "B R A I N K I T"

// RenderBanner returns the banner styled in the primary color. Terminals
// narrower than 60 columns get the compact form.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 60 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
