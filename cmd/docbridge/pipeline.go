package main

import (
	"github.com/spf13/cobra"

	"github.com/viant/docbridge/service/pipeline"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline <file.yaml>",
	Short: "Run a pipeline of named operations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		data, err := download(ctx, args[0])
		if err != nil {
			return err
		}
		steps, err := pipeline.Load(data)
		if err != nil {
			return err
		}
		rt, err := newRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Shutdown(ctx)
		result, runErr := rt.RunPipeline(ctx, steps)
		if err = report(ctx, cmd, rt, result); err != nil {
			return err
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
}
