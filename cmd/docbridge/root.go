package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/viant/docbridge"
	"github.com/viant/docbridge/model/command"
	"github.com/viant/docbridge/service/meta"
	"github.com/viant/docbridge/service/transport/ws"
)

var rootCmd = &cobra.Command{
	Use:   "docbridge",
	Short: "Drive a document host with batch scripts and pipelines",
	Long: `docbridge sends commands to a document host over a correlated channel.
Without --connect an in-process host is used and the resulting tree is printed.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML config file")
	rootCmd.PersistentFlags().String("connect", "", "websocket URL of a remote host, e.g. ws://localhost:8787/host")
	rootCmd.PersistentFlags().String("format", command.FormatYAML, "tree output format: yaml or json")
}

var loader = meta.New(nil, "")

func download(ctx context.Context, location string) ([]byte, error) {
	return loader.Download(ctx, location)
}

// newRuntime builds and starts a runtime from the persistent flags.
func newRuntime(ctx context.Context, cmd *cobra.Command) (*docbridge.Runtime, error) {
	options := []docbridge.Option{docbridge.WithOutput(cmd.OutOrStdout())}
	if location, _ := cmd.Flags().GetString("config"); location != "" {
		data, err := download(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %v: %w", location, err)
		}
		config, err := docbridge.LoadConfig(data)
		if err != nil {
			return nil, err
		}
		options = append(options, docbridge.WithConfig(config))
	}
	if url, _ := cmd.Flags().GetString("connect"); url != "" {
		client, err := ws.Dial(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect %v: %w", url, err)
		}
		options = append(options, docbridge.WithTransport(client))
	}
	rt := docbridge.New(options...).Runtime()
	if err := rt.Start(ctx); err != nil {
		return nil, err
	}
	return rt, nil
}

// report prints result as JSON followed by the current tree.
func report(ctx context.Context, cmd *cobra.Command, rt *docbridge.Runtime, result interface{}) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, string(data))
	format, _ := cmd.Flags().GetString("format")
	exported, err := rt.Client().Export(ctx, "", format)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(exported.Data))
	return nil
}
