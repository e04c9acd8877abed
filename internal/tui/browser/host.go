package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/marcus/mfx/internal/host"
)

// Level is the severity of a status message
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// Message is a host message waiting to be shown in the status line
type Message struct {
	Level Level
	Text  string
}

// Host collects provider messages for the status line. Confirmations are
// answered yes because every browser action is an explicit key press;
// free-form prompts are cancelled.
type Host struct {
	mu       sync.Mutex
	messages []Message
	handlers map[string]host.CommandFunc
}

// NewHost creates a browser host
func NewHost() *Host {
	return &Host{handlers: make(map[string]host.CommandFunc)}
}

// Handle registers fn for command
func (h *Host) Handle(command string, fn host.CommandFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[command] = fn
}

func (h *Host) push(l Level, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, Message{Level: l, Text: text})
}

// Drain returns and clears the pending messages
func (h *Host) Drain() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.messages
	h.messages = nil
	return out
}

func (h *Host) ShowInfo(msg string)    { h.push(LevelInfo, msg) }
func (h *Host) ShowWarning(msg string) { h.push(LevelWarning, msg) }
func (h *Host) ShowError(msg string)   { h.push(LevelError, msg) }

func (h *Host) Confirm(context.Context, string) (bool, error) { return true, nil }

func (h *Host) Input(context.Context, string, string, bool) (string, bool, error) {
	return "", false, nil
}

func (h *Host) Select(context.Context, string, []string) (string, bool, error) {
	return "", false, nil
}

// ExecuteCommand runs the registered handler. Handlers run on the goroutine
// of the operation that dispatched them.
func (h *Host) ExecuteCommand(ctx context.Context, command string) error {
	h.mu.Lock()
	fn, ok := h.handlers[command]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", host.ErrUnknownCommand, command)
	}
	return fn(ctx)
}
