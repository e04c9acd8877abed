// Package host defines the one-way calls the trees make into the user
// interface: messages, prompts, commands and change notifications.
package host

import (
	"context"
	"errors"
	"sync"

	"github.com/marcus/mfx/internal/models"
)

// Commands dispatched through ExecuteCommand
const (
	CommandRefreshDatasets = "mfx.ds.refreshAll"
	CommandRefreshUSS      = "mfx.uss.refreshAll"
	CommandRefreshJobs     = "mfx.jobs.refreshAll"
	CommandReload          = "mfx.reload"
)

// ErrUnknownCommand is returned for commands nobody handles
var ErrUnknownCommand = errors.New("host: unknown command")

// RefreshCommand returns the refresh-all command of a schema
func RefreshCommand(s models.Schema) string {
	switch s {
	case models.SchemaUSS:
		return CommandRefreshUSS
	case models.SchemaJobs:
		return CommandRefreshJobs
	default:
		return CommandRefreshDatasets
	}
}

// Host is the user interface as seen by the trees
type Host interface {
	ShowInfo(msg string)
	ShowWarning(msg string)
	ShowError(msg string)
	// Confirm asks a yes/no question; a cancelled prompt answers false
	Confirm(ctx context.Context, prompt string) (bool, error)
	// Input asks for text; ok is false when the user cancelled
	Input(ctx context.Context, prompt, value string, secret bool) (answer string, ok bool, err error)
	// Select picks one of options; ok is false when the user cancelled
	Select(ctx context.Context, prompt string, options []string) (choice string, ok bool, err error)
	ExecuteCommand(ctx context.Context, command string) error
}

// Listener receives change notifications. A nil node means the whole tree.
type Listener func(n *models.Node)

// Emitter fans change notifications out to listeners
type Emitter struct {
	mu        sync.Mutex
	listeners map[int]Listener
	next      int
}

// NewEmitter creates an emitter without listeners
func NewEmitter() *Emitter {
	return &Emitter{listeners: make(map[int]Listener)}
}

// Subscribe registers l and returns a function that removes it
func (e *Emitter) Subscribe(l Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.next
	e.next++
	e.listeners[id] = l
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// Fire notifies every listener
func (e *Emitter) Fire(n *models.Node) {
	e.mu.Lock()
	ls := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		ls = append(ls, l)
	}
	e.mu.Unlock()
	for _, l := range ls {
		l(n)
	}
}
