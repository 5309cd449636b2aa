package main

import (
	"context"
	"fmt"
	"time"

	"github.com/RamsisDev/Latip-Hackaton/pkg/mcpquic"
	"github.com/spf13/cobra"
)

func newRemoteCmd(a *app) *cobra.Command {
	var (
		region    string
		countries bool
		insecure  bool
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "remote <addr> [name]",
		Short: "Query a running latip server over MCP/QUIC",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, toolArgs := "list_countries", map[string]any{}
			if !countries {
				if len(args) < 2 {
					return fmt.Errorf("a name to search is required unless --countries is set")
				}
				tool = "search_trademarks"
				toolArgs = map[string]any{"query": args[1], "region": region}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			c := mcpquic.NewClient(args[0], mcpquic.ClientTLSConfig(insecure))
			if err := c.Connect(ctx); err != nil {
				return err
			}
			defer c.Close()

			text, err := c.CallText(ctx, tool, toolArgs)
			if err != nil {
				return err
			}
			a.logger.Debug("remote call done", "addr", args[0], "tool", tool)
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&region, "region", "r", "global", "country code or global")
	cmd.Flags().BoolVar(&countries, "countries", false, "list loaded countries instead of searching")
	cmd.Flags().BoolVarP(&insecure, "insecure", "k", true, "skip certificate verification (self-signed dev certs)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall call timeout")
	return cmd
}
