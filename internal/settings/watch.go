package settings

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an atomic rename produces
const DefaultDebounce = 150 * time.Millisecond

// Watch calls onChange when a scope file is rewritten, by this or any other
// process. It watches the containing directories, since atomic writes replace
// the file inode. Watch returns once the watcher is running; it stops when ctx
// is cancelled.
func (s *FileStore) Watch(ctx context.Context, debounce time.Duration, onChange func(Scope)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}

	byName := make(map[string]Scope, len(s.paths))
	for scope, path := range s.paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			fsw.Close()
			return err
		}
		dir := filepath.Dir(abs)
		if err := os.MkdirAll(dir, 0755); err != nil {
			fsw.Close()
			return err
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		byName[abs] = scope
	}

	var mu sync.Mutex
	timers := make(map[Scope]*time.Timer)
	fire := func(scope Scope) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[scope]; ok {
			t.Stop()
		}
		timers[scope] = time.AfterFunc(debounce, func() {
			if ctx.Err() == nil {
				onChange(scope)
			}
		})
	}

	go func() {
		defer fsw.Close()
		for {
			select {
			case <-ctx.Done():
				mu.Lock()
				for _, t := range timers {
					t.Stop()
				}
				mu.Unlock()
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
					continue
				}
				abs, err := filepath.Abs(ev.Name)
				if err != nil {
					continue
				}
				if scope, ok := byName[abs]; ok {
					fire(scope)
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				slog.Warn("settings: watcher error", "err", err)
			}
		}
	}()
	return nil
}
