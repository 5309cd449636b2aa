package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/RamsisDev/Latip-Hackaton/pkg/trademark"
	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		region  string
		asJSON  bool
		minimum float64
	)
	cmd := &cobra.Command{
		Use:   "search <name...>",
		Short: "Rank registered trademarks by similarity to a proposed name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if strings.TrimSpace(query) == "" {
				return errors.New("query is empty")
			}
			if cmd.Flags().Changed("threshold") {
				a.cfg.Search.Threshold = minimum
			}

			store := a.cfg.newStore()
			if err := store.Load(); err != nil {
				return fmt.Errorf("load datasets: %w", err)
			}
			matches := store.Search(query, region)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(matches)
			}
			label := store.Engine().Labels().Label(region)
			return printMatches(cmd.OutOrStdout(), query, label, matches)
		},
	}
	cmd.Flags().StringVarP(&region, "region", "r", trademark.RegionGlobal, `country code, or "global" for every country`)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print matches as JSON")
	cmd.Flags().Float64Var(&minimum, "threshold", trademark.DefaultThreshold, "minimum similarity score (0-1)")
	return cmd
}

func printMatches(w io.Writer, query, region string, matches []trademark.Match) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintf(w, "No similar trademarks for %q in %s.\n", query, region)
		return err
	}
	fmt.Fprintf(w, "%d similar trademark(s) for %q in %s:\n\n", len(matches), query, region)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SIMILARITY\tNAME\tCOUNTRY\tFILE NUMBER\tSTATUS")
	for _, m := range matches {
		fmt.Fprintf(tw, "%d%%\t%s\t%s\t%s\t%s\n", m.SimilarityPercent, m.Name, m.Country, m.FileNumber, m.Status)
	}
	return tw.Flush()
}
