// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/parley/internal/settings"
)

// Theme holds the styled components for the application, resolved for
// one appearance.
type Theme struct {
	// Mode is the preference the theme was built from (auto/light/dark).
	Mode string

	// IsDark is the resolved appearance after auto detection.
	IsDark bool

	Palette Palette

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderBadge lipgloss.Style

	// Message bubbles
	UserBubble      lipgloss.Style
	UserLabel       lipgloss.Style
	AssistantBubble lipgloss.Style
	AssistantLabel  lipgloss.Style
	SystemBubble    lipgloss.Style
	SystemLabel     lipgloss.Style

	// Input area
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style

	// Status bar
	StatusBar    lipgloss.Style
	StatusKey    lipgloss.Style
	StatusDesc   lipgloss.Style
	StatusActive lipgloss.Style

	// Spinner / pending send
	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	// Settings overlay
	OverlayBox      lipgloss.Style
	OverlayTitle    lipgloss.Style
	OverlayItem     lipgloss.Style
	OverlaySelected lipgloss.Style
	OverlayValue    lipgloss.Style
	OverlayHint     lipgloss.Style

	// Errors
	ErrorText lipgloss.Style
}

// ResolveDark maps a theme preference to a concrete appearance. The
// auto mode asks the terminal for its background color.
func ResolveDark(mode string) bool {
	switch mode {
	case settings.ThemeLight:
		return false
	case settings.ThemeDark:
		return true
	default:
		return termenv.HasDarkBackground()
	}
}

// New builds a theme for the given preference (auto, light, or dark).
func New(mode string) *Theme {
	isDark := ResolveDark(mode)
	p := LightPalette
	if isDark {
		p = DarkPalette
	}

	t := &Theme{
		Mode:    mode,
		IsDark:  isDark,
		Palette: p,
	}

	t.Header = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)
	t.HeaderBadge = lipgloss.NewStyle().
		Foreground(p.TextMuted)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(p.UserFg).
		Border(lipgloss.RoundedBorder(), false, false, false, true).
		BorderForeground(p.UserBorder).
		PaddingLeft(1)
	t.UserLabel = lipgloss.NewStyle().
		Foreground(p.UserBorder).
		Bold(true)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(p.AsstFg).
		Border(lipgloss.RoundedBorder(), false, false, false, true).
		BorderForeground(p.AsstBorder).
		PaddingLeft(1)
	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(p.AsstBorder).
		Bold(true)

	t.SystemBubble = lipgloss.NewStyle().
		Foreground(p.SysFg).
		Border(lipgloss.RoundedBorder(), false, false, false, true).
		BorderForeground(p.SysBorder).
		PaddingLeft(1)
	t.SystemLabel = lipgloss.NewStyle().
		Foreground(p.SysBorder).
		Bold(true)

	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(p.TextSecondary)
	t.StatusKey = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)
	t.StatusDesc = lipgloss.NewStyle().
		Foreground(p.TextMuted)
	t.StatusActive = lipgloss.NewStyle().
		Foreground(p.Success).
		Bold(true)

	t.Spinner = lipgloss.NewStyle().
		Foreground(p.Accent)
	t.ThinkingText = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Italic(true)

	t.OverlayBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(1, 2)
	t.OverlayTitle = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)
	t.OverlayItem = lipgloss.NewStyle().
		Foreground(p.Text)
	t.OverlaySelected = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)
	t.OverlayValue = lipgloss.NewStyle().
		Foreground(p.Success)
	t.OverlayHint = lipgloss.NewStyle().
		Foreground(p.TextMuted)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(p.Error).
		Bold(true)

	return t
}

// GlamourStyle returns the glamour standard style name matching the
// resolved appearance.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}
