// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// Palette holds the resolved colors for one appearance. Unlike
// lipgloss.AdaptiveColor, a palette is picked once from the theme
// preference, so a forced light or dark theme wins over whatever the
// terminal background looks like.
type Palette struct {
	// Accent colors
	Accent    lipgloss.Color // brand, header, prompt
	AccentDim lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	// Text colors
	Text          lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color

	// Surfaces and borders
	Border    lipgloss.Color
	BorderDim lipgloss.Color

	// Message bubbles
	UserFg      lipgloss.Color
	UserBorder  lipgloss.Color
	AsstFg      lipgloss.Color
	AsstBorder  lipgloss.Color
	SysFg       lipgloss.Color
	SysBorder   lipgloss.Color
}

// LightPalette is the palette for light terminal backgrounds.
var LightPalette = Palette{
	Accent:    lipgloss.Color("#0891B2"),
	AccentDim: lipgloss.Color("#0E7490"),

	Success: lipgloss.Color("#059669"),
	Warning: lipgloss.Color("#D97706"),
	Error:   lipgloss.Color("#E11D48"),

	Text:          lipgloss.Color("#1F2937"),
	TextSecondary: lipgloss.Color("#6B7280"),
	TextMuted:     lipgloss.Color("#9CA3AF"),

	Border:    lipgloss.Color("#D4D4D4"),
	BorderDim: lipgloss.Color("#E5E5E5"),

	UserFg:     lipgloss.Color("#1E40AF"),
	UserBorder: lipgloss.Color("#3B82F6"),
	AsstFg:     lipgloss.Color("#5B4B8A"),
	AsstBorder: lipgloss.Color("#C4B5FD"),
	SysFg:      lipgloss.Color("#92400E"),
	SysBorder:  lipgloss.Color("#F59E0B"),
}

// DarkPalette is the palette for dark terminal backgrounds.
var DarkPalette = Palette{
	Accent:    lipgloss.Color("#22D3EE"),
	AccentDim: lipgloss.Color("#164E63"),

	Success: lipgloss.Color("#34D399"),
	Warning: lipgloss.Color("#FBBF24"),
	Error:   lipgloss.Color("#FB7185"),

	Text:          lipgloss.Color("#CDD6F4"),
	TextSecondary: lipgloss.Color("#A6ADC8"),
	TextMuted:     lipgloss.Color("#6C7086"),

	Border:    lipgloss.Color("#45475A"),
	BorderDim: lipgloss.Color("#313244"),

	UserFg:     lipgloss.Color("#E0F2FE"),
	UserBorder: lipgloss.Color("#3B82F6"),
	AsstFg:     lipgloss.Color("#E9E4F5"),
	AsstBorder: lipgloss.Color("#A78BFA"),
	SysFg:      lipgloss.Color("#FEF3C7"),
	SysBorder:  lipgloss.Color("#F59E0B"),
}
