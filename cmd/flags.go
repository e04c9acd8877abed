package cmd

import (
	"github.com/marcus/mfx/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// schemaValue is a pflag.Value accepting schema names and their aliases
type schemaValue struct {
	schema models.Schema
}

var _ pflag.Value = (*schemaValue)(nil)

func (v *schemaValue) String() string { return string(v.schema) }

func (v *schemaValue) Set(s string) error {
	schema, err := models.ParseSchema(s)
	if err != nil {
		return err
	}
	v.schema = schema
	return nil
}

func (v *schemaValue) Type() string { return "schema" }

// addSchemaFlag registers --schema/-s on cmd, defaulting to datasets
func addSchemaFlag(cmd *cobra.Command) *schemaValue {
	v := &schemaValue{schema: models.SchemaDatasets}
	cmd.Flags().VarP(v, "schema", "s", "tree: datasets (ds), uss or jobs")
	cmd.RegisterFlagCompletionFunc("schema", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"datasets", "uss", "jobs"}, cobra.ShellCompDirectiveNoFileComp
	})
	return v
}

// schemaOf returns the schema flag of cmd
func schemaOf(cmd *cobra.Command) models.Schema {
	if f := cmd.Flags().Lookup("schema"); f != nil {
		if v, ok := f.Value.(*schemaValue); ok {
			return v.schema
		}
	}
	return models.SchemaDatasets
}
