package importer

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RamsisDev/Latip-Hackaton/pkg/trademark"
)

const downloadAttempts = 3

// fetch copies src to dest. Remote URLs go through downloadFile; file://
// URLs and plain paths are copied from disk.
func fetch(ctx context.Context, src, dest string) error {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return downloadFile(ctx, src, dest)
	}
	in, err := os.Open(strings.TrimPrefix(src, "file://"))
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()
	return writeFile(dest, in)
}

// downloadFile downloads url to dest, retrying with exponential backoff.
func downloadFile(ctx context.Context, url, dest string) error {
	client := &http.Client{Timeout: 10 * time.Minute}

	var lastErr error
	for attempt := 0; attempt < downloadAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
			continue
		}

		err = writeFile(dest, resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("download %s failed after %d attempts: %w", url, downloadAttempts, lastErr)
}

func writeFile(dest string, r io.Reader) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return f.Close()
}

// unzipFile extracts a ZIP archive flat into destDir and returns the paths written.
func unzipFile(src, destDir string) ([]string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var paths []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		destPath := filepath.Join(destDir, filepath.Base(f.Name))
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open zip entry %s: %w", f.Name, err)
		}
		err = writeFile(destPath, rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		paths = append(paths, destPath)
	}
	return paths, nil
}

// firstWithExt returns the first path with the given extension.
func firstWithExt(paths []string, ext string) (string, bool) {
	for _, p := range paths {
		if strings.EqualFold(filepath.Ext(p), ext) {
			return p, true
		}
	}
	return "", false
}

// withTempDir runs fn with a scratch directory under outputDir that is
// removed afterwards.
func withTempDir(outputDir string, fn func(dir string) error) error {
	if err := ensureDir(outputDir); err != nil {
		return err
	}
	dir, err := os.MkdirTemp(outputDir, "_download-")
	if err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}
	defer os.RemoveAll(dir)
	return fn(dir)
}

// countryDir is the dataset directory for code under outputDir.
func countryDir(outputDir, code string) string {
	return filepath.Join(outputDir, strings.ToLower(code))
}

// writeCountry saves one country's records as data.gob plus its manifest.
func writeCountry(outputDir, code string, recs []trademark.Record, m trademark.Manifest) error {
	dir := countryDir(outputDir, code)
	if err := ensureDir(dir); err != nil {
		return err
	}
	if err := trademark.SaveGob(recs, filepath.Join(dir, "data.gob")); err != nil {
		return fmt.Errorf("%s: %w", code, err)
	}
	m.Country = code
	if m.ID == "" {
		m.ID = "marks-" + strings.ToLower(code)
	}
	if m.Version == "" {
		m.Version = time.Now().UTC().Format("2006-01-02")
	}
	m.DataFile = "data.gob"
	if err := trademark.WriteManifest(dir, &m); err != nil {
		return fmt.Errorf("%s: %w", code, err)
	}
	return nil
}

// writeCountries writes every country in byCountry and fills the report.
func writeCountries(outputDir string, byCountry map[string][]trademark.Record, base trademark.Manifest, rep *Report) error {
	if rep.Countries == nil {
		rep.Countries = make(map[string]int, len(byCountry))
	}
	for code, recs := range byCountry {
		if err := writeCountry(outputDir, code, recs, base); err != nil {
			return err
		}
		rep.Countries[code] = len(recs)
	}
	return nil
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
