package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Run imports one adapter into outputDir. The URL comes from sdb when the
// adapter has a row there, else from the adapter default. sdb may be nil.
func Run(ctx context.Context, sdb *SourceDB, a Adapter, outputDir string, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}

	url := a.DefaultURL()
	if sdb != nil {
		u, err := sdb.GetURL(a.ID())
		switch {
		case err == nil:
			url = u
		case !errors.Is(err, ErrUnknownSource):
			return nil, err
		}
	}

	logger.Info("import started", "source", a.ID(), "url", url)
	rep, err := a.Import(ctx, url, outputDir)
	if err != nil {
		return nil, err
	}
	if sdb != nil {
		if err := sdb.RecordImport(a.ID(), rep.Total()); err != nil {
			logger.Warn("import bookkeeping failed", "source", a.ID(), "error", err)
		}
	}
	logger.Info("import finished",
		"source", a.ID(),
		"countries", len(rep.Countries),
		"records", rep.Total(),
		"skipped", rep.Skipped,
	)
	return rep, nil
}

// RunAll imports every registered adapter, stopping at the first failure.
func RunAll(ctx context.Context, sdb *SourceDB, outputDir string, logger *slog.Logger) error {
	for _, a := range All() {
		if _, err := Run(ctx, sdb, a, outputDir, logger); err != nil {
			return fmt.Errorf("import %s: %w", a.ID(), err)
		}
	}
	return nil
}
