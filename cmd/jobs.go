package cmd

import (
	"io"
	"os"

	"github.com/marcus/mfx/internal/output"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:     "jobs",
	Short:   "Work with jobs",
	GroupID: "files",
}

var jobsSubmitCmd = &cobra.Command{
	Use:   "submit <profile> <file>",
	Short: "Submit JCL from a file, or - for stdin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var (
			jcl []byte
			err error
		)
		if args[1] == "-" {
			jcl, err = io.ReadAll(os.Stdin)
		} else {
			jcl, err = os.ReadFile(args[1])
		}
		if err != nil {
			output.Error("read JCL: %v", err)
			return err
		}

		a, err := openApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := sessionFor(ctx, a.jobs.Provider, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		id, err := a.jobs.Submit(ctx, session, jcl)
		if err != nil {
			output.Error("submit: %v", err)
			return err
		}
		output.Success("submitted %s", id)
		return nil
	},
}

func init() {
	jobsCmd.AddCommand(jobsSubmitCmd)
	rootCmd.AddCommand(jobsCmd)
}
