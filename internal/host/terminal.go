package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/marcus/mfx/internal/output"
)

// CommandFunc handles a dispatched command
type CommandFunc func(ctx context.Context) error

// Terminal is the Host used by the command line. Prompts use huh forms when
// stdin is a terminal; otherwise confirmations answer no and inputs cancel.
type Terminal struct {
	mu       sync.Mutex
	handlers map[string]CommandFunc
	// Interactive overrides terminal detection when non-nil
	Interactive *bool
}

// NewTerminal creates a terminal host
func NewTerminal() *Terminal {
	return &Terminal{handlers: make(map[string]CommandFunc)}
}

// Handle registers fn for command
func (t *Terminal) Handle(command string, fn CommandFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[command] = fn
}

func (t *Terminal) interactive() bool {
	if t.Interactive != nil {
		return *t.Interactive
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (t *Terminal) ShowInfo(msg string)    { output.Info("%s", msg) }
func (t *Terminal) ShowWarning(msg string) { output.Warning("%s", msg) }
func (t *Terminal) ShowError(msg string)   { output.Error("%s", msg) }

func (t *Terminal) Confirm(ctx context.Context, prompt string) (bool, error) {
	if !t.interactive() {
		return false, nil
	}
	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(prompt).
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	)).WithTheme(huh.ThemeDracula()).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func (t *Terminal) Input(ctx context.Context, prompt, value string, secret bool) (string, bool, error) {
	if !t.interactive() {
		return "", false, nil
	}
	answer := value
	in := huh.NewInput().Title(prompt).Value(&answer)
	if secret {
		in = in.EchoMode(huh.EchoModePassword)
	}
	err := huh.NewForm(huh.NewGroup(in)).WithTheme(huh.ThemeDracula()).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return answer, true, nil
}

func (t *Terminal) Select(ctx context.Context, prompt string, options []string) (string, bool, error) {
	if !t.interactive() || len(options) == 0 {
		return "", false, nil
	}
	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o, o))
	}
	var choice string
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(prompt).
			Options(opts...).
			Value(&choice),
	)).WithTheme(huh.ThemeDracula()).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return choice, true, nil
}

func (t *Terminal) ExecuteCommand(ctx context.Context, command string) error {
	t.mu.Lock()
	fn, ok := t.handlers[command]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
	return fn(ctx)
}
