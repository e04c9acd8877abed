package cmd

import (
	"context"
	"fmt"

	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/output"
	"github.com/marcus/mfx/internal/suggest"
	"github.com/marcus/mfx/internal/tree"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "Manage tree sessions",
	GroupID: "session",
}

// withSession opens the app and resolves the named session of the selected tree
func withSession(cmd *cobra.Command, label string, fn func(context.Context, *tree.Provider, *models.Node) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()
	p := a.provider(schemaOf(cmd))

	n := p.SessionByLabel(label)
	if n == nil {
		output.Error("no session %s in the %s tree", label, p.Schema())
		return fmt.Errorf("session not found: %s", label)
	}
	return fn(ctx, p, n)
}

// profileHint suggests known profile names close to name
func profileHint(ctx context.Context, a *app, name string) string {
	all, err := a.profiles.FetchAllProfiles(ctx)
	if err != nil {
		return ""
	}
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, p.Name)
	}
	return suggest.Hint(name, names)
}

var sessionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the sessions of a tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()
		p := a.provider(schemaOf(cmd))

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			out := make([]map[string]string, 0, len(p.Sessions()))
			for _, n := range p.Sessions() {
				out = append(out, map[string]string{
					"label":   n.Label,
					"search":  n.Pattern,
					"context": n.ContextValue(),
				})
			}
			return output.JSON(out)
		}

		if len(p.Sessions()) == 0 {
			fmt.Println("No sessions")
			return nil
		}
		for _, n := range p.Sessions() {
			fmt.Println(output.FormatNode(n, 0))
		}
		return nil
	},
}

var sessionsAddCmd = &cobra.Command{
	Use:   "add <profile>",
	Short: "Add a session for a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()
		p := a.provider(schemaOf(cmd))

		all, _ := cmd.Flags().GetBool("all-trees")
		targets := []*tree.Provider{p}
		if all {
			targets = a.trees.All()
		}
		for _, t := range targets {
			if t.SessionByLabel(args[0]) != nil {
				output.Info("%s already has session %s", t.Schema(), args[0])
				continue
			}
			if _, err := t.AddSession(ctx, args[0]); err != nil {
				output.Error("add session: %v%s", err, profileHint(ctx, a, args[0]))
				return err
			}
			output.Success("added session %s to %s", args[0], t.Schema())
		}
		return nil
	},
}

var sessionsRemoveCmd = &cobra.Command{
	Use:     "remove <profile>",
	Aliases: []string{"rm"},
	Short:   "Remove a session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args[0], func(ctx context.Context, p *tree.Provider, n *models.Node) error {
			if err := p.DeleteSession(ctx, n); err != nil {
				output.Error("remove session: %v", err)
				return err
			}
			output.Success("removed session %s", args[0])
			return nil
		})
	},
}

var sessionsSearchCmd = &cobra.Command{
	Use:   "search <profile> <pattern>",
	Short: "Set the session search and list the results",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()
		p := a.provider(schemaOf(cmd))

		n, err := sessionFor(ctx, p, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if err := p.Search(ctx, n, args[1]); err != nil {
			output.Error("search: %v", err)
			return err
		}
		children, err := p.GetChildren(ctx, n)
		if err != nil {
			output.Error("list: %v", err)
			return err
		}
		fmt.Println(output.FormatNode(n, 0))
		for _, c := range children {
			fmt.Println(output.FormatNode(c, 1))
		}
		return nil
	},
}

var sessionsCheckCmd = &cobra.Command{
	Use:   "check <profile>",
	Short: "Validate the profile behind a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args[0], func(ctx context.Context, p *tree.Provider, n *models.Node) error {
			state, err := p.CheckCurrentProfile(ctx, n)
			if err != nil {
				output.Error("check: %v", err)
				return err
			}
			fmt.Printf("%s %s (%s)\n", output.StatusBadge(n.Tag.Status), n.Label, state)
			return nil
		})
	},
}

var sessionsLoginCmd = &cobra.Command{
	Use:   "login <profile>",
	Short: "Log in to the token service of a session profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args[0], func(ctx context.Context, p *tree.Provider, n *models.Node) error {
			if err := p.SSOLogin(ctx, n); err != nil {
				output.Error("login: %v", err)
				return err
			}
			output.Success("logged in %s", n.Label)
			return nil
		})
	},
}

var sessionsLogoutCmd = &cobra.Command{
	Use:   "logout <profile>",
	Short: "Log out of the token service of a session profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args[0], func(ctx context.Context, p *tree.Provider, n *models.Node) error {
			if err := p.SSOLogout(ctx, n); err != nil {
				output.Error("logout: %v", err)
				return err
			}
			output.Success("logged out %s", n.Label)
			return nil
		})
	},
}

var sessionsEditCmd = &cobra.Command{
	Use:   "edit <profile>",
	Short: "Edit the connection fields of a session profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args[0], func(ctx context.Context, p *tree.Provider, n *models.Node) error {
			if err := p.EditSession(ctx, n); err != nil {
				output.Error("edit: %v", err)
				return err
			}
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{sessionsListCmd, sessionsAddCmd, sessionsRemoveCmd, sessionsSearchCmd,
		sessionsCheckCmd, sessionsLoginCmd, sessionsLogoutCmd, sessionsEditCmd} {
		addSchemaFlag(c)
		sessionsCmd.AddCommand(c)
	}
	sessionsListCmd.Flags().Bool("json", false, "JSON output")
	sessionsAddCmd.Flags().Bool("all-trees", false, "add the session to every tree")
	rootCmd.AddCommand(sessionsCmd)
}
