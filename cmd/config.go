package cmd

import (
	"errors"
	"fmt"

	"github.com/marcus/mfx/internal/config"
	"github.com/marcus/mfx/internal/output"
	"github.com/marcus/mfx/internal/suggest"
	"github.com/spf13/cobra"
)

// reportKeyError prints err, with near key names when the key is unknown
func reportKeyError(key string, err error) {
	if errors.Is(err, config.ErrUnknownKey) {
		output.Error("%v%s", err, suggest.Hint(key, config.Keys()))
		return
	}
	output.Error("%v", err)
}

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage mfx configuration",
	GroupID: "system",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		err := config.Update(configPath, func(c *config.Config) error {
			return c.Set(key, value)
		})
		if err != nil {
			reportKeyError(key, err)
			return err
		}
		output.Success("%s = %s", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a config value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cfg.Get(args[0])
		if err != nil {
			reportKeyError(args[0], err)
			return err
		}
		fmt.Println(v)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all config values",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			out := map[string]string{}
			for _, k := range config.Keys() {
				out[k], _ = cfg.Get(k)
			}
			return output.JSON(out)
		}
		fmt.Printf("# %s\n", configPath)
		for _, k := range config.Keys() {
			v, _ := cfg.Get(k)
			fmt.Printf("%s = %s\n", k, v)
		}
		return nil
	},
}

func init() {
	configListCmd.Flags().Bool("json", false, "JSON output")
	configCmd.AddCommand(configSetCmd, configGetCmd, configListCmd)
	rootCmd.AddCommand(configCmd)
}
