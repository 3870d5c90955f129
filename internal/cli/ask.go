// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - single question command handler.
//
// Examples:
//   parley ask "What is the capital of France?"
//   parley ask --plain "List HTTP status codes"
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/parley/internal/chat"
	"github.com/jeranaias/parley/internal/provider"
	"github.com/jeranaias/parley/internal/settings"
)

// HandleAsk sends one question, prints the reply, and exits.
func HandleAsk(args *Args, backend provider.Provider, store *settings.Store, recorder chat.Recorder) error {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return fmt.Errorf("usage: parley ask \"question\"")
	}

	if !args.Quiet {
		fmt.Fprintf(os.Stderr, "asking %s...\n", backend.Name())
	}

	ctrl := chat.NewController(backend, store).WithRecorder(recorder)
	msg, err := ctrl.Send(context.Background(), query)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	fmt.Println(renderReply(msg.Content, args.Plain))
	return nil
}

// renderReply renders markdown for terminal output unless plain output
// was requested or the renderer cannot be built.
func renderReply(content string, plain bool) string {
	if plain {
		return content
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(out)
}
