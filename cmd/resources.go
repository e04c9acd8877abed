package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/output"
	"github.com/marcus/mfx/internal/tree"
	"github.com/spf13/cobra"
)

// resolve finds target for profile, on the favorites side when fromFav is set
func resolve(ctx context.Context, p *tree.Provider, profile, target string, fromFav bool) (*models.Node, error) {
	if !fromFav {
		return locate(ctx, p, profile, target)
	}
	n := findFavorite(p, profile, target)
	if n == nil {
		return nil, fmt.Errorf("no favorite %s for %s", target, profile)
	}
	return n, nil
}

var openCmd = &cobra.Command{
	Use:     "open <profile> <path>",
	Aliases: []string{"cat"},
	Short:   "Print a file, member or spool and record it in file history",
	Args:    cobra.ExactArgs(2),
	GroupID: "files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()
		p := a.provider(schemaOf(cmd))

		fromFav, _ := cmd.Flags().GetBool("favorite")
		n, err := resolve(ctx, p, args[0], args[1], fromFav)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		data, err := p.OpenFile(ctx, n)
		if data != nil {
			os.Stdout.Write(data)
		}
		if err != nil {
			output.Error("open: %v", err)
			return err
		}
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:     "rename <profile> <path> <new-name>",
	Aliases: []string{"mv"},
	Short:   "Rename a resource and keep its favorite in sync",
	Args:    cobra.ExactArgs(3),
	GroupID: "files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()
		p := a.provider(schemaOf(cmd))

		fromFav, _ := cmd.Flags().GetBool("favorite")
		n, err := resolve(ctx, p, args[0], args[1], fromFav)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		old := n.Path
		if err := p.Rename(ctx, n, args[2]); err != nil {
			output.Error("rename: %v", err)
			return err
		}
		output.Success("renamed %s to %s", old, n.Path)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <profile> <path>",
	Aliases: []string{"rm"},
	Short:   "Delete a resource and its favorite",
	Args:    cobra.ExactArgs(2),
	GroupID: "files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()
		p := a.provider(schemaOf(cmd))

		fromFav, _ := cmd.Flags().GetBool("favorite")
		n, err := resolve(ctx, p, args[0], args[1], fromFav)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if err := p.DeleteResource(ctx, n, !yes); err != nil {
			output.Error("delete: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{openCmd, renameCmd, deleteCmd} {
		addSchemaFlag(c)
		c.Flags().Bool("favorite", false, "resolve the path among the profile's favorites")
		rootCmd.AddCommand(c)
	}
	deleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
}
