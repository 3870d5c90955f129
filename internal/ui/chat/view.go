// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/settings"
)

// settingsItems is the overlay's row order.
var settingsItems = []string{
	settings.KeyUseWebSearch,
	settings.KeyTheme,
}

// View renders the complete chat view.
// Layout: header (1 line) + messages (viewport) + input (3 lines) + status (1 line).
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showSettings {
		return m.renderSettingsOverlay()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// renderHeader renders the top line: app name, provider, web badge.
func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("parley")
	badge := m.theme.HeaderBadge.Render(" · " + m.providerName)
	if webSearch, _ := m.store.GetBool(settings.KeyUseWebSearch); webSearch {
		badge += m.theme.StatusActive.Render(" · web")
	}
	return m.theme.Header.Render(title + badge)
}

// renderInput renders the bordered input box, or the waiting spinner
// while a send is in flight.
func (m Model) renderInput() string {
	inner := m.input.View()
	if m.sending {
		inner = m.spinner.View() + m.theme.ThinkingText.Render(" waiting for "+m.providerName+"...")
	}
	return m.theme.InputContainer.Width(m.width - 2).Render(inner)
}

// renderStatusBar renders the bottom shortcut line or a transient
// status message.
func (m Model) renderStatusBar() string {
	if m.statusMsg != "" {
		return m.theme.StatusBar.Render(" " + m.statusMsg)
	}
	parts := []string{
		m.theme.StatusKey.Render("enter") + m.theme.StatusDesc.Render(" send"),
		m.theme.StatusKey.Render("ctrl+s") + m.theme.StatusDesc.Render(" settings"),
		m.theme.StatusKey.Render("ctrl+e") + m.theme.StatusDesc.Render(" export"),
		m.theme.StatusKey.Render("ctrl+c") + m.theme.StatusDesc.Render(" quit"),
	}
	return m.theme.StatusBar.Render(" " + strings.Join(parts, "  "))
}

// renderSettingsOverlay renders the full-screen settings panel.
func (m Model) renderSettingsOverlay() string {
	var sb strings.Builder
	sb.WriteString(m.theme.OverlayTitle.Render("Settings"))
	sb.WriteString("\n\n")

	for i, key := range settingsItems {
		cursor := "  "
		style := m.theme.OverlayItem
		if i == m.settingsCursor {
			cursor = "> "
			style = m.theme.OverlaySelected
		}
		sb.WriteString(style.Render(cursor + settingLabel(key)))
		sb.WriteString("  ")
		sb.WriteString(m.theme.OverlayValue.Render(m.settingValue(key)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.theme.OverlayHint.Render("↑/↓ select · enter change · esc close"))

	box := m.theme.OverlayBox.Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// settingLabel maps a preference key to its overlay label.
func settingLabel(key string) string {
	switch key {
	case settings.KeyUseWebSearch:
		return "Web search"
	case settings.KeyTheme:
		return "Theme     "
	default:
		return key
	}
}

// settingValue formats the current value of a preference.
func (m Model) settingValue(key string) string {
	switch key {
	case settings.KeyUseWebSearch:
		if on, _ := m.store.GetBool(key); on {
			return "[on]"
		}
		return "[off]"
	case settings.KeyTheme:
		mode, _ := m.store.GetString(key)
		return fmt.Sprintf("[%s]", mode)
	default:
		return ""
	}
}
