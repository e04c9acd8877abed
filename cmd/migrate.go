package cmd

import (
	"fmt"
	"strings"

	"github.com/marcus/mfx/internal/migrate"
	"github.com/marcus/mfx/internal/output"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Short:   "Rewrite settings written by an earlier version",
	GroupID: "system",
	Long: `Moves legacy settings keys to their current names in the global and
workspace scopes. Each scope is stamped with the current major version and
is skipped on later runs until the major version changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := migrate.Run(ctx, a.store, a.host, version)
		if err != nil {
			output.Error("migrate: %v", err)
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(res)
		}
		fmt.Print(output.SectionHeader("Settings version " + res.Major))
		for _, s := range res.Scopes {
			switch {
			case s.Skipped:
				fmt.Printf("  %-9s up to date\n", s.Scope)
			case len(s.Migrated) == 0:
				fmt.Printf("  %-9s nothing to migrate (was %q)\n", s.Scope, s.Previous)
			default:
				fmt.Printf("  %-9s migrated %s\n", s.Scope, strings.Join(s.Migrated, ", "))
			}
		}
		if res.Reloaded {
			output.Success("trees reloaded")
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("json", false, "JSON output")
	rootCmd.AddCommand(migrateCmd)
}
