package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/marcus/mfx/internal/filters"
	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/output"
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Short:   "Manage data set allocation templates",
	GroupID: "trees",
}

var templatesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List templates, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, closer, err := openFilters(ctx, models.SchemaDatasets)
		if err != nil {
			return err
		}
		defer closer()

		tmpls := m.GetDsTemplates()
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(tmpls)
		}
		if len(tmpls) == 0 {
			fmt.Println("No templates")
			return nil
		}
		for _, t := range tmpls {
			keys := make([]string, 0, len(t.Attributes))
			for k := range t.Attributes {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			attrs := make([]string, len(keys))
			for i, k := range keys {
				attrs[i] = fmt.Sprintf("%s=%v", k, t.Attributes[k])
			}
			fmt.Printf("%s  %s\n", t.Name, strings.Join(attrs, " "))
		}
		return nil
	},
}

var templatesAddCmd = &cobra.Command{
	Use:   "add <name> [key=value...]",
	Short: "Save a template, replacing one with the same name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		attrs := make(map[string]any, len(args)-1)
		for _, kv := range args[1:] {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				output.Error("attribute %q is not key=value", kv)
				return fmt.Errorf("invalid attribute %q", kv)
			}
			attrs[k] = parseAttr(v)
		}

		ctx := cmd.Context()
		m, closer, err := openFilters(ctx, models.SchemaDatasets)
		if err != nil {
			return err
		}
		defer closer()
		if err := m.AddDsTemplateHistory(ctx, filters.Template{Name: args[0], Attributes: attrs}); err != nil {
			output.Error("save template: %v", err)
			return err
		}
		output.Success("saved template %s", args[0])
		return nil
	},
}

var templatesResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, closer, err := openFilters(ctx, models.SchemaDatasets)
		if err != nil {
			return err
		}
		defer closer()
		if err := m.ResetDsTemplateHistory(ctx); err != nil {
			output.Error("reset templates: %v", err)
			return err
		}
		output.Success("cleared templates")
		return nil
	},
}

// parseAttr keeps numbers and booleans typed in the stored template
func parseAttr(v string) any {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

func init() {
	templatesListCmd.Flags().Bool("json", false, "JSON output")
	templatesCmd.AddCommand(templatesListCmd, templatesAddCmd, templatesResetCmd)
	rootCmd.AddCommand(templatesCmd)
}
