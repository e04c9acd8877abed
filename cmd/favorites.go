package cmd

import (
	"fmt"

	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/output"
	"github.com/marcus/mfx/internal/tree"
	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage favorites",
	GroupID: "trees",
}

var favoritesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the favorites tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()
		p := a.provider(schemaOf(cmd))

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			var out []map[string]string
			for _, g := range p.FavoritesRoot().Children {
				for _, f := range g.Children {
					out = append(out, map[string]string{
						"profile": g.Label,
						"label":   f.Label,
						"path":    f.Path,
						"context": f.ContextValue(),
						"entry":   tree.EncodeFavorite(g.Label, f.Label, f.Tag),
					})
				}
			}
			return output.JSON(out)
		}

		groups := p.FavoritesRoot().Children
		if len(groups) == 0 {
			fmt.Println("No favorites")
			return nil
		}
		fmt.Println(output.FormatNode(p.FavoritesRoot(), 0))
		for _, g := range groups {
			fmt.Println(output.FormatNode(g, 1))
			for _, f := range g.Children {
				fmt.Println(output.FormatNode(f, 2))
			}
		}
		return nil
	},
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <profile> [path]",
	Short: "Favorite a resource, or the session search with --search",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()
		p := a.provider(schemaOf(cmd))
		profile := args[0]

		var n *models.Node
		if pattern, _ := cmd.Flags().GetString("search"); pattern != "" {
			n, err = sessionFor(ctx, p, profile)
			if err == nil {
				err = p.Search(ctx, n, pattern)
			}
		} else if len(args) == 2 {
			n, err = locate(ctx, p, profile, args[1])
		} else {
			err = fmt.Errorf("give a path or --search")
		}
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if err := p.AddFavorite(ctx, n); err != nil {
			output.Error("add favorite: %v", err)
			return err
		}
		output.Success("favorited %s for %s", n.Label, profile)
		return nil
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:     "remove <profile> <path-or-label>",
	Aliases: []string{"rm"},
	Short:   "Remove a favorite",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()
		p := a.provider(schemaOf(cmd))

		fav := findFavorite(p, args[0], args[1])
		if fav == nil {
			output.Error("no favorite %s for %s", args[1], args[0])
			return fmt.Errorf("favorite not found")
		}
		if err := p.RemoveFavorite(ctx, fav); err != nil {
			output.Error("remove favorite: %v", err)
			return err
		}
		output.Success("removed favorite %s", fav.Label)
		return nil
	},
}

var favoritesRemoveProfileCmd = &cobra.Command{
	Use:   "remove-profile <profile>",
	Short: "Remove every favorite of a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		yes, _ := cmd.Flags().GetBool("yes")
		if err := a.provider(schemaOf(cmd)).RemoveFavProfile(ctx, args[0], !yes); err != nil {
			output.Error("remove favorites: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{favoritesListCmd, favoritesAddCmd, favoritesRemoveCmd, favoritesRemoveProfileCmd} {
		addSchemaFlag(c)
		favoritesCmd.AddCommand(c)
	}
	favoritesListCmd.Flags().Bool("json", false, "JSON output")
	favoritesAddCmd.Flags().String("search", "", "favorite this session search instead of a resource")
	favoritesRemoveProfileCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(favoritesCmd)
}
