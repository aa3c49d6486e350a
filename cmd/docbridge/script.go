package main

import (
	"github.com/spf13/cobra"
)

var scriptCmd = &cobra.Command{
	Use:   "script <file>",
	Short: "Run a batch script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		text, err := download(ctx, args[0])
		if err != nil {
			return err
		}
		rt, err := newRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Shutdown(ctx)
		label, _ := cmd.Flags().GetString("checkpoint")
		if label == "" {
			result, runErr := rt.RunScript(ctx, string(text))
			if err = report(ctx, cmd, rt, result); err != nil {
				return err
			}
			return runErr
		}
		result, _, runErr := rt.RunScriptWithCheckpoint(ctx, "", label, string(text))
		if runErr != nil {
			if restore, _ := cmd.Flags().GetBool("restore"); restore {
				if _, err = rt.RestoreCheckpoint(ctx, label); err != nil {
					return err
				}
			}
		}
		if err = report(ctx, cmd, rt, result); err != nil {
			return err
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(scriptCmd)
	scriptCmd.Flags().String("checkpoint", "", "save the page under this label before running")
	scriptCmd.Flags().Bool("restore", false, "restore the checkpoint when the script fails")
}
