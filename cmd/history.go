package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/marcus/mfx/internal/filters"
	"github.com/marcus/mfx/internal/input"
	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/output"
	"github.com/spf13/cobra"
)

// openFilters opens the settings store and the filter manager of one schema
func openFilters(ctx context.Context, schema models.Schema) (*filters.Manager, func() error, error) {
	store, _, sqlite, err := openStore(cfg)
	if err != nil {
		output.Error("open settings: %v", err)
		return nil, nil, err
	}
	closer := func() error { return nil }
	if sqlite != nil {
		closer = sqlite.Close
	}
	m, err := filters.New(ctx, store, schema, filters.Options{
		MaxSearchHistory: cfg.History.MaxSearch,
		MaxFileHistory:   cfg.History.MaxFile,
	})
	if err != nil {
		closer()
		output.Error("load %s history: %v", schema, err)
		return nil, nil, err
	}
	return m, closer, nil
}

type historyKind struct {
	get    func(*filters.Manager) []string
	add    func(*filters.Manager, context.Context, string) error
	remove func(*filters.Manager, context.Context, string) error
	reset  func(*filters.Manager, context.Context) error
}

var historyKinds = map[string]historyKind{
	"search": {
		get:    (*filters.Manager).GetSearchHistory,
		add:    (*filters.Manager).AddSearchHistory,
		remove: (*filters.Manager).RemoveSearchHistory,
		reset:  (*filters.Manager).ResetSearchHistory,
	},
	"file": {
		get:    (*filters.Manager).GetFileHistory,
		add:    (*filters.Manager).AddFileHistory,
		remove: (*filters.Manager).RemoveFileHistory,
		reset:  (*filters.Manager).ResetFileHistory,
	},
}

func kindOf(cmd *cobra.Command) (historyKind, string, error) {
	name, _ := cmd.Flags().GetString("kind")
	k, ok := historyKinds[name]
	if !ok {
		output.Error("unknown history kind %q (use search or file)", name)
		return historyKind{}, "", fmt.Errorf("unknown history kind %q", name)
	}
	return k, name, nil
}

var historyCmd = &cobra.Command{
	Use:     "history",
	Short:   "Show and edit search and file history",
	GroupID: "trees",
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List search and file history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		schema := schemaOf(cmd)
		m, closer, err := openFilters(ctx, schema)
		if err != nil {
			return err
		}
		defer closer()

		persist, err := m.Persistence(ctx)
		if err != nil {
			output.Error("read persistence: %v", err)
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(map[string]any{
				"schema":        schema,
				"persistence":   persist,
				"searchHistory": m.GetSearchHistory(),
				"fileHistory":   m.GetFileHistory(),
				"sessions":      m.GetSessions(),
			})
		}

		fmt.Print(output.SectionHeader(fmt.Sprintf("Search history (%s)", schema)))
		printList(m.GetSearchHistory())
		fmt.Print(output.SectionHeader("File history"))
		printList(m.GetFileHistory())
		if !persist {
			output.Warning("persistence is off for %s; changes are not saved", schema)
		}
		return nil
	},
}

var historyAddCmd = &cobra.Command{
	Use:   "add <value>...",
	Short: "Add history entries (- reads stdin, @file reads a file)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, name, err := kindOf(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		m, closer, err := openFilters(ctx, schemaOf(cmd))
		if err != nil {
			return err
		}
		defer closer()
		values := input.ExpandValues(args, os.Stdin)
		for _, v := range values {
			if err := k.add(m, ctx, v); err != nil {
				output.Error("add %s history: %v", name, err)
				return err
			}
		}
		output.Success("added %d entries to %s history", len(values), name)
		return nil
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:     "remove <value>",
	Aliases: []string{"rm"},
	Short:   "Remove the first history entry containing value",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, name, err := kindOf(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		m, closer, err := openFilters(ctx, schemaOf(cmd))
		if err != nil {
			return err
		}
		defer closer()
		if err := k.remove(m, ctx, args[0]); err != nil {
			output.Error("remove %s history: %v", name, err)
			return err
		}
		output.Success("removed from %s history", name)
		return nil
	},
}

var historyResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear a history",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, name, err := kindOf(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		m, closer, err := openFilters(ctx, schemaOf(cmd))
		if err != nil {
			return err
		}
		defer closer()
		if err := k.reset(m, ctx); err != nil {
			output.Error("reset %s history: %v", name, err)
			return err
		}
		output.Success("cleared %s history", name)
		return nil
	},
}

var historyPersistenceCmd = &cobra.Command{
	Use:       "persistence <on|off>",
	Short:     "Turn history and favorites persistence on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var enabled bool
		switch args[0] {
		case "on", "true":
			enabled = true
		case "off", "false":
		default:
			output.Error("expected on or off, got %q", args[0])
			return fmt.Errorf("invalid value %q", args[0])
		}
		ctx := cmd.Context()
		schema := schemaOf(cmd)
		m, closer, err := openFilters(ctx, schema)
		if err != nil {
			return err
		}
		defer closer()
		if err := m.SetPersistence(ctx, enabled); err != nil {
			output.Error("set persistence: %v", err)
			return err
		}
		output.Success("%s persistence %s", schema, args[0])
		return nil
	},
}

func printList(items []string) {
	if len(items) == 0 {
		fmt.Println(output.BulletList([]string{"(empty)"}, 2)[0])
		return
	}
	for _, line := range output.BulletList(items, 2) {
		fmt.Println(line)
	}
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyAddCmd, historyRemoveCmd, historyResetCmd, historyPersistenceCmd} {
		addSchemaFlag(c)
		historyCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{historyAddCmd, historyRemoveCmd, historyResetCmd} {
		c.Flags().String("kind", "search", "history kind: search or file")
	}
	historyListCmd.Flags().Bool("json", false, "JSON output")
	rootCmd.AddCommand(historyCmd)
}
