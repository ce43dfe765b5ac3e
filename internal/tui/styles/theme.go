package styles

import (
	"image/color"

	"github.com/charmbracelet/lipgloss/v2"
)

type Theme struct {
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color

	FgBase      color.Color
	FgMuted     color.Color
	FgHalfMuted color.Color
	BgBase      color.Color
	BgSubtle    color.Color

	Border      color.Color
	BorderFocus color.Color

	Success color.Color
	Error   color.Color
	Warning color.Color
	White   color.Color

	styles *Styles
}

// Styles are the shared building blocks derived from a theme.
type Styles struct {
	Base      lipgloss.Style
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Muted     lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Button    lipgloss.Style
	Selected  lipgloss.Style
	Dialog    lipgloss.Style
}

var current = defaultTheme()

func CurrentTheme() *Theme {
	return current
}

func defaultTheme() *Theme {
	return &Theme{
		Primary:     lipgloss.Color("#6B50FF"),
		Secondary:   lipgloss.Color("#FF60FF"),
		Accent:      lipgloss.Color("#00CED1"),
		FgBase:      lipgloss.Color("#DFDBDD"),
		FgMuted:     lipgloss.Color("#858392"),
		FgHalfMuted: lipgloss.Color("#BFBCC8"),
		BgBase:      lipgloss.Color("#201F26"),
		BgSubtle:    lipgloss.Color("#2D2C35"),
		Border:      lipgloss.Color("#3A3943"),
		BorderFocus: lipgloss.Color("#6B50FF"),
		Success:     lipgloss.Color("#12C78F"),
		Error:       lipgloss.Color("#EB4268"),
		Warning:     lipgloss.Color("#E8FE96"),
		White:       lipgloss.Color("#FFFAF1"),
	}
}

// S returns the styles for the theme, building them on first use.
func (t *Theme) S() *Styles {
	if t.styles == nil {
		t.styles = t.buildStyles()
	}
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	base := lipgloss.NewStyle().Foreground(t.FgBase)
	return &Styles{
		Base:      base,
		Title:     base.Foreground(t.Primary).Bold(true),
		Subtitle:  base.Foreground(t.FgMuted),
		Muted:     base.Foreground(t.FgMuted),
		User:      base.Foreground(t.White).Background(t.Primary).Padding(0, 1),
		Assistant: base.Foreground(t.FgBase).Background(t.BgSubtle).Padding(0, 1),
		System:    base.Foreground(t.FgHalfMuted).Italic(true),
		Success:   base.Foreground(t.Success),
		Error:     base.Foreground(t.Error),
		Button:    base.Background(t.BgSubtle).Padding(0, 2),
		Selected:  base.Foreground(t.White).Background(t.Secondary).Padding(0, 2),
		Dialog: base.
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus),
	}
}
