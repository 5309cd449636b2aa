package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RamsisDev/Latip-Hackaton/pkg/trademark"
)

func init() {
	Register(&bundleAdapter{})
}

// bundleAdapter splits a JSON register bundle (country code -> records) into
// one dataset per country.
type bundleAdapter struct{}

func (a *bundleAdapter) ID() string          { return "latip-bundle" }
func (a *bundleAdapter) Format() string      { return "json" }
func (a *bundleAdapter) Description() string { return "Latin-American trademark bundle (JSON, one array per country)" }
func (a *bundleAdapter) DefaultURL() string  { return "data/trademarks.json" }
func (a *bundleAdapter) License() string     { return "proprietary" }

func (a *bundleAdapter) Import(ctx context.Context, sourceURL, outputDir string) (*Report, error) {
	rep := &Report{}
	err := withTempDir(outputDir, func(tmp string) error {
		path := filepath.Join(tmp, "bundle.json")
		if err := fetch(ctx, sourceURL, path); err != nil {
			return fmt.Errorf("fetch: %w", err)
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		byCountry, skipped, err := trademark.ParseJSON(f)
		if err != nil {
			return fmt.Errorf("parse: %w", err)
		}
		rep.Skipped = skipped

		return writeCountries(outputDir, byCountry, trademark.Manifest{
			Source:    "Latip register bundle",
			SourceURL: sourceURL,
			License:   a.License(),
		}, rep)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.ID(), err)
	}
	return rep, nil
}
