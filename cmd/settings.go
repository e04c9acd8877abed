package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/marcus/mfx/internal/config"
	"github.com/marcus/mfx/internal/output"
	"github.com/marcus/mfx/internal/settings"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Short:   "Inspect the raw settings store",
	GroupID: "system",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show a key's value in each scope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, _, sqlite, err := openStore(cfg)
		if err != nil {
			output.Error("open settings: %v", err)
			return err
		}
		if sqlite != nil {
			defer sqlite.Close()
		}

		in, err := store.Inspect(ctx, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(in)
		}
		for _, scope := range []settings.Scope{settings.Global, settings.Workspace} {
			v := in.Value(scope)
			if v == nil {
				fmt.Printf("%-9s (unset)\n", scope)
				continue
			}
			fmt.Printf("%-9s %s\n", scope, compact(v))
		}
		return nil
	},
}

var settingsDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete a key from one scope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		scopeName, _ := cmd.Flags().GetString("scope")
		scope, err := settings.ParseScope(scopeName)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		store, _, sqlite, err := openStore(cfg)
		if err != nil {
			output.Error("open settings: %v", err)
			return err
		}
		if sqlite != nil {
			defer sqlite.Close()
		}
		if err := store.Delete(ctx, args[0], scope); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("deleted %s from %s settings", args[0], scope)
		return nil
	},
}

var settingsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every stored key (sqlite backend)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cfg.Storage.Backend != config.BackendSQLite {
			err := fmt.Errorf("settings list needs the sqlite backend (have %s)", cfg.Storage.Backend)
			output.Error("%v", err)
			return err
		}
		_, _, sqlite, err := openStore(cfg)
		if err != nil {
			output.Error("open settings: %v", err)
			return err
		}
		defer sqlite.Close()

		entries, err := sqlite.ListEntries(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(entries)
		}
		if len(entries) == 0 {
			fmt.Println("No settings stored")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%-9s %-32s %-10s %s\n", e.Scope, e.Key, output.FormatTimeAgo(e.UpdatedAt), compact(e.Value))
		}
		return nil
	},
}

// compact renders a JSON value on one line, truncated for table output
func compact(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return string(raw)
	}
	const max = 80
	if len(b) > max {
		return string(b[:max-3]) + "..."
	}
	return string(b)
}

func init() {
	settingsGetCmd.Flags().Bool("json", false, "JSON output")
	settingsListCmd.Flags().Bool("json", false, "JSON output")
	settingsDeleteCmd.Flags().String("scope", "global", "scope: global or workspace")
	settingsCmd.AddCommand(settingsGetCmd, settingsDeleteCmd, settingsListCmd)
	rootCmd.AddCommand(settingsCmd)
}
