package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RamsisDev/Latip-Hackaton/pkg/trademark"
)

func init() {
	Register(&csvMarksAdapter{})
}

// csvMarksAdapter imports a flat CSV export with a country column, either
// plain or zipped.
//
// Header: country,name,origin_country,registration_date,file_number,holder,agent,section_type,section_text
// Only country and name are required.
type csvMarksAdapter struct{}

func (a *csvMarksAdapter) ID() string          { return "csv-marks" }
func (a *csvMarksAdapter) Format() string      { return "csv" }
func (a *csvMarksAdapter) Description() string { return "Flat trademark CSV with a country column" }
func (a *csvMarksAdapter) DefaultURL() string  { return "data/marks.csv" }
func (a *csvMarksAdapter) License() string     { return "proprietary" }

func (a *csvMarksAdapter) Import(ctx context.Context, sourceURL, outputDir string) (*Report, error) {
	rep := &Report{}
	err := withTempDir(outputDir, func(tmp string) error {
		path := filepath.Join(tmp, "marks"+filepath.Ext(sourceURL))
		if err := fetch(ctx, sourceURL, path); err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		if strings.EqualFold(filepath.Ext(path), ".zip") {
			files, err := unzipFile(path, tmp)
			if err != nil {
				return err
			}
			csvPath, ok := firstWithExt(files, ".csv")
			if !ok {
				return errors.New("zip archive holds no .csv file")
			}
			path = csvPath
		}

		byCountry, skipped, err := parseMarksCSV(path)
		if err != nil {
			return fmt.Errorf("parse: %w", err)
		}
		rep.Skipped = skipped

		return writeCountries(outputDir, byCountry, trademark.Manifest{
			Source:    "trademark CSV export",
			SourceURL: sourceURL,
			License:   a.License(),
		}, rep)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.ID(), err)
	}
	return rep, nil
}

// parseMarksCSV groups rows by country. Rows with an invalid country code or
// no name are skipped and counted.
func parseMarksCSV(path string) (map[string][]trademark.Record, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := idx["country"]; !ok {
		return nil, 0, errors.New(`missing "country" column`)
	}
	if _, ok := idx["name"]; !ok {
		return nil, 0, errors.New(`missing "name" column`)
	}
	col := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make(map[string][]trademark.Record)
	var skipped int
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read row: %w", err)
		}

		code := strings.ToUpper(col(row, "country"))
		name := col(row, "name")
		if !trademark.ValidCode(code) || name == "" {
			skipped++
			continue
		}
		out[code] = append(out[code], trademark.Record{
			Name:             name,
			OriginCountry:    col(row, "origin_country"),
			RegistrationDate: col(row, "registration_date"),
			FileNumber:       col(row, "file_number"),
			Holder:           col(row, "holder"),
			Agent:            col(row, "agent"),
			SectionType:      col(row, "section_type"),
			SectionText:      col(row, "section_text"),
		})
	}
	return out, skipped, nil
}
