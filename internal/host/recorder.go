package host

import (
	"context"
	"sync"
)

// Recorder is a scripted Host that records every call
type Recorder struct {
	mu sync.Mutex

	Infos    []string
	Warnings []string
	Errors   []string
	Prompts  []string
	Commands []string

	// ConfirmAnswer answers every Confirm
	ConfirmAnswer bool
	// Answers are consumed in order by Input and Select; when exhausted the
	// prompt counts as cancelled
	Answers []string
	// CommandErr is returned by ExecuteCommand
	CommandErr error
}

func (r *Recorder) ShowInfo(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Infos = append(r.Infos, msg)
}

func (r *Recorder) ShowWarning(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, msg)
}

func (r *Recorder) ShowError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, msg)
}

func (r *Recorder) Confirm(_ context.Context, prompt string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Prompts = append(r.Prompts, prompt)
	return r.ConfirmAnswer, nil
}

func (r *Recorder) Input(_ context.Context, prompt, _ string, _ bool) (string, bool, error) {
	return r.answer(prompt)
}

func (r *Recorder) Select(_ context.Context, prompt string, _ []string) (string, bool, error) {
	return r.answer(prompt)
}

func (r *Recorder) answer(prompt string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Prompts = append(r.Prompts, prompt)
	if len(r.Answers) == 0 {
		return "", false, nil
	}
	a := r.Answers[0]
	r.Answers = r.Answers[1:]
	return a, true, nil
}

func (r *Recorder) ExecuteCommand(_ context.Context, command string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Commands = append(r.Commands, command)
	return r.CommandErr
}
