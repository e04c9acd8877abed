package cmd

import (
	"fmt"

	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/output"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:     "profiles",
	Aliases: []string{"profile"},
	Short:   "Inspect connection profiles",
	GroupID: "session",
}

var profilesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the profiles of the team configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		all, err := a.profiles.FetchAllProfiles(ctx)
		if err != nil {
			output.Error("load profiles: %v", err)
			return err
		}
		check, _ := cmd.Flags().GetBool("check")

		type row struct {
			Name   string               `json:"name"`
			Type   string               `json:"type"`
			Host   string               `json:"host,omitempty"`
			Global bool                 `json:"global"`
			Status models.ProfileStatus `json:"status,omitempty"`
		}
		rows := make([]row, 0, len(all))
		for _, p := range all {
			r := row{Name: p.Name, Type: p.Type, Host: p.Host, Global: p.Global}
			if check {
				st, err := a.profiles.CheckCurrentProfile(ctx, p)
				if err != nil {
					output.Warning("check %s: %v", p.Name, err)
				}
				r.Status = st.Status
			}
			rows = append(rows, r)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(rows)
		}
		if len(rows) == 0 {
			fmt.Println("No profiles")
			return nil
		}
		for _, r := range rows {
			scope := "project"
			if r.Global {
				scope = "global"
			}
			line := fmt.Sprintf("%-20s %-8s %-7s %s", r.Name, r.Type, scope, r.Host)
			if r.Status != models.StatusUnset {
				line += "  " + output.StatusBadge(r.Status)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var profilesCheckCmd = &cobra.Command{
	Use:   "check <profile>",
	Short: "Check whether a profile can connect",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.profiles.LoadNamedProfile(ctx, args[0], "")
		if err != nil {
			output.Error("%v", err)
			return err
		}
		st, err := a.profiles.CheckCurrentProfile(ctx, p)
		if err != nil {
			output.Error("check: %v", err)
			return err
		}
		fmt.Printf("%s %s\n", output.StatusBadge(st.Status), st.Name)
		return nil
	},
}

func init() {
	profilesListCmd.Flags().Bool("json", false, "JSON output")
	profilesListCmd.Flags().Bool("check", false, "check the status of each profile")
	profilesCmd.AddCommand(profilesListCmd, profilesCheckCmd)
	rootCmd.AddCommand(profilesCmd)
}
