// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/jeranaias/parley/internal/model"
)

// refreshViewport re-renders the transcript into the viewport.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
}

// renderMessages renders the whole transcript, newest last.
func (m Model) renderMessages() string {
	history := m.ctrl.History()
	if len(history) == 0 {
		return m.theme.ThinkingText.Render("\n  Start the conversation by typing below.\n")
	}

	var sb strings.Builder
	for _, msg := range history {
		sb.WriteString(m.renderMessage(msg))
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderMessage renders one message bubble with its role label.
func (m Model) renderMessage(msg *model.Message) string {
	ts := m.theme.StatusDesc.Render(msg.Timestamp.Format("15:04"))

	switch msg.Role {
	case model.RoleUser:
		label := m.theme.UserLabel.Render(msg.Role.DisplayName()) + " " + ts
		return label + "\n" + m.theme.UserBubble.Render(msg.Content) + "\n"

	case model.RoleAssistant:
		label := m.theme.AssistantLabel.Render(msg.Role.DisplayName()) + " " + ts
		return label + "\n" + m.theme.AssistantBubble.Render(m.renderMarkdown(msg.Content)) + "\n"

	case model.RoleSystem:
		label := m.theme.SystemLabel.Render(msg.Role.DisplayName()) + " " + ts
		return label + "\n" + m.theme.SystemBubble.Render(msg.Content) + "\n"

	default:
		return msg.Content + "\n"
	}
}

// renderMarkdown renders assistant markdown, falling back to the raw
// text when the renderer is unavailable or fails.
func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
