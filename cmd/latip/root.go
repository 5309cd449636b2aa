package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// Version is set at build time: go build -ldflags "-X main.Version=v1.0.0"
var Version = "dev"

// app carries what PersistentPreRunE loads for every subcommand.
type app struct {
	cfgFile string
	cfg     config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "latip",
		Short:         "Trademark name similarity search for Latin-American registers",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(cfg.LogLevel)
			slog.SetDefault(a.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "config.yaml", "path to config file")

	root.AddCommand(
		newServeCmd(a),
		newSearchCmd(a),
		newImportCmd(a),
		newSourcesCmd(a),
		newRemoteCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), Version)
			},
		},
	)
	return root
}
