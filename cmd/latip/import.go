package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/RamsisDev/Latip-Hackaton/pkg/importer"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		source    string
		all       bool
		outputDir string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build dataset directories from upstream trademark sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir == "" {
				outputDir = a.cfg.DatasetsDir
			}
			sdb, err := a.openSources()
			if err != nil {
				return err
			}
			defer sdb.Close()

			if !all && source == "" {
				return printSources(cmd.OutOrStdout(), sdb)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Hour)
			defer cancel()

			if all {
				return importer.RunAll(ctx, sdb, outputDir, a.logger)
			}
			adapter, err := importer.Get(source)
			if err != nil {
				return err
			}
			rep, err := importer.Run(ctx, sdb, adapter, outputDir, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %d records in %d countries -> %s (skipped %d)\n",
				adapter.ID(), rep.Total(), len(rep.Countries), outputDir, rep.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "adapter ID to import (see `latip sources`)")
	cmd.Flags().BoolVar(&all, "all", false, "import every registered source")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "dataset directory (default: datasets_dir from config)")
	cmd.MarkFlagsMutuallyExclusive("source", "all")
	return cmd
}

func newSourcesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List import sources and their last check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sdb, err := a.openSources()
			if err != nil {
				return err
			}
			defer sdb.Close()
			return printSources(cmd.OutOrStdout(), sdb)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set-url <adapter> <url>",
			Short: "Override the URL or path an adapter imports from",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				sdb, err := a.openSources()
				if err != nil {
					return err
				}
				defer sdb.Close()
				return sdb.SetURL(args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "check",
			Short: "Check every source once and print the result",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				sdb, err := a.openSources()
				if err != nil {
					return err
				}
				defer sdb.Close()
				importer.NewChecker(sdb, a.logger, time.Hour).CheckAll(cmd.Context())
				return printSources(cmd.OutOrStdout(), sdb)
			},
		},
	)
	return cmd
}

// openSources opens the sources database and seeds the registered adapters.
func (a *app) openSources() (*importer.SourceDB, error) {
	if err := ensureParent(a.cfg.sourcesDB()); err != nil {
		return nil, err
	}
	sdb, err := importer.OpenSourceDB(a.cfg.sourcesDB())
	if err != nil {
		return nil, err
	}
	if err := sdb.Seed(importer.All()); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("seed sources: %w", err)
	}
	return sdb, nil
}

func printSources(w io.Writer, sdb *importer.SourceDB) error {
	sources, err := sdb.ListSources()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tFORMAT\tURL\tSTATUS\tLAST IMPORT")
	for _, src := range sources {
		status := "-"
		if src.LastStatus != nil {
			status = fmt.Sprint(*src.LastStatus)
		}
		imported := "never"
		if src.LastImport != nil && src.LastRecords != nil {
			imported = fmt.Sprintf("%s (%d records)", time.Unix(*src.LastImport, 0).UTC().Format(time.DateTime), *src.LastRecords)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", src.AdapterID, src.Format, src.SourceURL, status, imported)
	}
	return tw.Flush()
}

func ensureParent(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
