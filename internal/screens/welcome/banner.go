package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/kakomon/kakomon/internal/ui/theme"
)

const bannerArt = `
 ██╗  ██╗ █████╗ ██╗  ██╗ ██████╗ ███╗   ███╗ ██████╗ ███╗   ██╗
 ██║ ██╔╝██╔══██╗██║ ██╔╝██╔═══██╗████╗ ████║██╔═══██╗████╗  ██║
 █████╔╝ ███████║█████╔╝ ██║   ██║██╔████╔██║██║   ██║██╔██╗ ██║
 ██╔═██╗ ██╔══██║██╔═██╗ ██║   ██║██║╚██╔╝██║██║   ██║██║╚██╗██║
 ██║  ██╗██║  ██║██║  ██╗╚██████╔╝██║ ╚═╝ ██║╚██████╔╝██║ ╚████║
 ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝ ╚═╝     ╚═╝ ╚═════╝ ╚═╝  ╚═══╝`

const bannerCompact = "K A K O M O N"

// RenderBanner returns the banner styled in the primary color. Terminals
// narrower than the art get a compact fallback.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < lipgloss.Width(bannerArt)+2 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
