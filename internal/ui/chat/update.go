// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	chatctl "github.com/jeranaias/parley/internal/chat"
	"github.com/jeranaias/parley/internal/export"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/settings"
)

// =============================================================================
// MESSAGES
// =============================================================================

// sendDoneMsg reports the outcome of a send. The transcript already
// holds the result; Err is kept for the status line only.
type sendDoneMsg struct {
	Msg *model.Message
	Err error
}

// exportDoneMsg reports the outcome of a transcript export.
type exportDoneMsg struct {
	Path string
	Err  error
}

// =============================================================================
// COMMANDS
// =============================================================================

// sendCmd forwards the text to the backend. The controller appends the
// user message before the call and the outcome after, so the view only
// needs to refresh when this returns (and on spinner ticks meanwhile).
func sendCmd(ctrl *chatctl.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		msg, err := ctrl.Send(context.Background(), text)
		return sendDoneMsg{Msg: msg, Err: err}
	}
}

// exportCmd writes the transcript to a Markdown file. It exports a
// snapshot so an in-flight send can keep appending meanwhile.
func exportCmd(ctrl *chatctl.Controller) tea.Cmd {
	return func() tea.Msg {
		path, err := export.Markdown(ctrl.Snapshot(), nil)
		return exportDoneMsg{Path: path, Err: err}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		if m.showSettings {
			return m.handleSettingsKey(msg)
		}
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshViewport()
		return m, cmd

	case sendDoneMsg:
		m.sending = false
		m.input.Focus()
		if msg.Err != nil {
			m.statusMsg = m.theme.ErrorText.Render("send failed, see transcript")
		}
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, textinput.Blink

	case exportDoneMsg:
		if msg.Err != nil {
			m.statusMsg = m.theme.ErrorText.Render("export failed: " + msg.Err.Error())
		} else {
			m.statusMsg = "exported to " + msg.Path
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleResize recalculates the layout for a new terminal size.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// header (1) + input box (3) + status (1)
	viewportHeight := m.height - 5
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(m.width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = viewportHeight
	}
	m.input.Width = m.width - 6

	m.rebuildRenderer()
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, nil
}

// handleKey processes keys in the normal chat view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Settings):
		m.showSettings = true
		m.settingsCursor = 0
		m.statusMsg = ""
		return m, nil

	case key.Matches(msg, m.keys.Export):
		if len(m.ctrl.History()) == 0 {
			m.statusMsg = "nothing to export yet"
			return m, nil
		}
		return m, exportCmd(m.ctrl)

	case key.Matches(msg, m.keys.Send):
		return m.startSend()
	}

	m.statusMsg = ""
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// startSend dispatches the input text. Empty input and an in-flight
// send are both rejected here so the input line never locks up.
func (m Model) startSend() (tea.Model, tea.Cmd) {
	if m.sending {
		m.statusMsg = "still waiting for the previous reply"
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	m.sending = true
	m.sendStart = time.Now()
	m.statusMsg = ""
	m.input.Reset()
	m.input.Blur()

	return m, tea.Batch(m.spinner.Tick, sendCmd(m.ctrl, text))
}

// handleSettingsKey processes keys while the settings overlay is open.
func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.Settings):
		m.showSettings = false
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.settingsCursor > 0 {
			m.settingsCursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.settingsCursor < len(settingsItems)-1 {
			m.settingsCursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		m.applySettingsToggle()
		return m, nil
	}
	return m, nil
}

// applySettingsToggle flips the selected preference. Store failures
// surface on the status line but never close the overlay.
func (m *Model) applySettingsToggle() {
	switch settingsItems[m.settingsCursor] {
	case settings.KeyUseWebSearch:
		current, _ := m.store.GetBool(settings.KeyUseWebSearch)
		if err := m.store.Set(settings.KeyUseWebSearch, !current); err != nil {
			m.statusMsg = m.theme.ErrorText.Render(err.Error())
		}
	case settings.KeyTheme:
		mode, _ := m.store.GetString(settings.KeyTheme)
		next := nextTheme(mode)
		if err := m.store.Set(settings.KeyTheme, next); err != nil {
			m.statusMsg = m.theme.ErrorText.Render(err.Error())
			return
		}
		m.rebuildTheme()
		m.refreshViewport()
	}
}

// nextTheme cycles auto -> light -> dark -> auto.
func nextTheme(current string) string {
	switch current {
	case settings.ThemeAuto:
		return settings.ThemeLight
	case settings.ThemeLight:
		return settings.ThemeDark
	default:
		return settings.ThemeAuto
	}
}
