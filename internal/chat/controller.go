// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/provider"
	"github.com/jeranaias/parley/internal/settings"
)

// =============================================================================
// STATE
// =============================================================================

// State is the controller's send lifecycle state.
type State int

const (
	// StateIdle means no send is in flight; input is accepted.
	StateIdle State = iota

	// StateSending means a provider call is in flight; further sends
	// are rejected until it completes.
	StateSending
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}

// Error variables for send rejection.
var (
	// ErrEmptyInput indicates the input was empty or whitespace-only.
	ErrEmptyInput = errors.New("empty input")

	// ErrBusy indicates a send is already in flight.
	ErrBusy = errors.New("a send is already in flight")
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Recorder receives one record per completed provider call. The telemetry
// package implements it; a nil Recorder disables recording.
type Recorder interface {
	Record(provider string, duration time.Duration, err error)
}

// Controller owns the conversation transcript and mediates every send.
// It enforces single-flight sending: one provider call at a time, with
// input rejected while a call is pending.
type Controller struct {
	mu       sync.Mutex
	conv     *model.Conversation
	backend  provider.Provider
	store    *settings.Store
	recorder Recorder
	state    State
}

// NewController creates a controller bound to the given backend and
// settings store. The backend binding is fixed for the controller's life.
func NewController(backend provider.Provider, store *settings.Store) *Controller {
	return &Controller{
		conv:    model.NewConversation(),
		backend: backend,
		store:   store,
		state:   StateIdle,
	}
}

// WithRecorder attaches a telemetry recorder.
func (c *Controller) WithRecorder(r Recorder) *Controller {
	c.recorder = r
	return c
}

// WithConversation replaces the transcript, e.g. when resuming a session.
func (c *Controller) WithConversation(conv *model.Conversation) *Controller {
	if conv != nil {
		c.conv = conv
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a send is in flight.
func (c *Controller) Busy() bool {
	return c.State() == StateSending
}

// Snapshot returns a copy of the transcript taken under the lock. The
// live conversation is only ever touched while holding c.mu, so export
// and persistence read from a snapshot instead of the shared instance.
func (c *Controller) Snapshot() *model.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.RestoreConversation(
		c.conv.ID, c.conv.Title, c.conv.CreatedAt, c.conv.UpdatedAt, c.conv.Messages())
}

// History returns a snapshot of the transcript's messages.
func (c *Controller) History() []*model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.Messages()
}

// Send forwards one user message to the backend and appends the outcome
// to the transcript. The user message is appended before the call is
// made, so it is visible even if the backend fails. On success the reply
// is appended as an assistant message; on failure a system message
// carrying the original text is appended instead, and the error is
// returned for logging.
//
// Send blocks until the call completes. Callers wanting a responsive UI
// run it from a goroutine; the controller itself guarantees only one
// call is in flight.
func (c *Controller) Send(ctx context.Context, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	webSearch, _ := c.store.GetBool(settings.KeyUseWebSearch)
	opts := provider.Options{WebSearch: webSearch}

	c.mu.Lock()
	if c.state == StateSending {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.state = StateSending
	c.conv.AppendUser(text)
	c.mu.Unlock()

	start := time.Now()
	reply, err := c.backend.Send(ctx, text, opts)
	elapsed := time.Since(start)

	if c.recorder != nil {
		c.recorder.Record(c.backend.Name(), elapsed, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle

	if err != nil {
		log.Printf("send failed after %s: %v", elapsed.Round(time.Millisecond), err)
		msg := c.conv.AppendSystem(failureNotice(text, err))
		return msg, err
	}
	return c.conv.AppendAssistant(reply), nil
}

// failureNotice builds the system message shown when a send fails. It
// carries the original text so the user can recover it, and a short
// reason without vendor detail.
func failureNotice(text string, err error) string {
	return fmt.Sprintf("Message could not be delivered (%s). Original message: %s",
		failureReason(err), text)
}

// failureReason maps a send error to a short user-facing phrase.
func failureReason(err error) string {
	switch {
	case errors.Is(err, provider.ErrNotConfigured):
		return "no API key configured"
	case errors.Is(err, provider.ErrAuthFailed):
		return "authentication failed"
	case errors.Is(err, provider.ErrRateLimited):
		return "rate limited"
	case errors.Is(err, provider.ErrEmptyReply):
		return "the provider returned an empty reply"
	case errors.Is(err, context.DeadlineExceeded):
		return "the request timed out"
	case errors.Is(err, context.Canceled):
		return "the request was canceled"
	default:
		return "the provider request failed"
	}
}
