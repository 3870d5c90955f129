// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	chatctl "github.com/jeranaias/parley/internal/chat"
	"github.com/jeranaias/parley/internal/settings"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Wiring
	ctrl  *chatctl.Controller
	store *settings.Store

	// Styling
	theme    *styles.Theme
	renderer *glamour.TermRenderer

	// Dimensions
	width  int
	height int
	ready  bool

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keys     KeyMap

	// Send state
	sending   bool
	sendStart time.Time

	// Settings overlay
	showSettings   bool
	settingsCursor int

	// Status line flash (export results, errors)
	statusMsg string

	providerName string
}

// New creates the chat view bound to a controller and settings store.
func New(ctrl *chatctl.Controller, store *settings.Store, providerName string) Model {
	mode, _ := store.GetString(settings.KeyTheme)
	theme := styles.New(mode)

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.CharLimit = 0
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return Model{
		ctrl:         ctrl,
		store:        store,
		theme:        theme,
		input:        input,
		spinner:      sp,
		keys:         DefaultKeyMap(),
		providerName: providerName,
	}
}

// Init starts the input cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// rebuildTheme restyles everything after a theme preference change.
func (m *Model) rebuildTheme() {
	mode, _ := m.store.GetString(settings.KeyTheme)
	m.theme = styles.New(mode)
	m.input.PromptStyle = m.theme.InputPrompt
	m.spinner.Style = m.theme.Spinner
	m.rebuildRenderer()
}

// rebuildRenderer recreates the markdown renderer for the current
// width and appearance. A nil renderer falls back to plain text.
func (m *Model) rebuildRenderer() {
	wrap := m.width - 6
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.theme.GlamourStyle()),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}
