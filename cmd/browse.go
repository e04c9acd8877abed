package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/mfx/internal/migrate"
	"github.com/marcus/mfx/internal/output"
	"github.com/marcus/mfx/internal/settings"
	"github.com/marcus/mfx/internal/tui/browser"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:     "browse",
	Aliases: []string{"ui"},
	Short:   "Interactive tree browser",
	Long: `Browse the data set, USS and job trees in a full-screen view.

Key bindings:
  Tab/Shift+Tab  Switch tree
  ↑/↓            Move
  Enter/Space    Expand, collapse or open
  /              Set the session search
  f / u          Favorite / unfavorite
  R              Rename
  c              Check the session profile
  l / L          Log in / log out
  x              Remove favorite or session
  r              Refresh
  ?              Toggle help
  q              Quit

With the file backend, edits made by other mfx processes are picked up live.`,
	GroupID: "trees",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		h := browser.NewHost()
		a, err := openApp(ctx, h)
		if err != nil {
			return err
		}
		defer a.Close()

		var mu sync.Mutex
		if skip, _ := cmd.Flags().GetBool("no-migrate"); !skip {
			mu.Lock()
			_, err := migrate.Run(ctx, a.store, h, version)
			mu.Unlock()
			if err != nil {
				output.Warning("settings migration failed: %v", err)
			}
		}

		var changes chan struct{}
		if a.files != nil {
			changes = make(chan struct{}, 1)
			err := a.files.Watch(ctx, settings.DefaultDebounce, func(scope settings.Scope) {
				slog.Debug("browse: settings changed", "scope", scope)
				select {
				case changes <- struct{}{}:
				default:
				}
			})
			if err != nil {
				output.Warning("live reload disabled: %v", err)
				changes = nil
			}
		}

		model := browser.NewModel(ctx, a.trees.All(), browser.Options{
			Host:     h,
			Changes:  changes,
			Validate: cfg.AutomaticValidation(),
			Lock:     &mu,
		})

		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running browser: %w", err)
		}
		return nil
	},
}

func init() {
	browseCmd.Flags().Bool("no-migrate", false, "skip the settings migration on startup")
	rootCmd.AddCommand(browseCmd)
}
