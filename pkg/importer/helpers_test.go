package importer

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownloadFile(t *testing.T) {
	content := "name,country\nAlpha,EC\n"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(content))
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "marks.csv")
	if err := downloadFile(context.Background(), ts.URL, dest); err != nil {
		t.Fatalf("downloadFile: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != content {
		t.Errorf("content = %q, want %q", data, content)
	}
}

func TestDownloadFile_Retry(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < downloadAttempts {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "retry.txt")
	if err := downloadFile(context.Background(), ts.URL, dest); err != nil {
		t.Fatalf("downloadFile with retries: %v", err)
	}
	if attempts != downloadAttempts {
		t.Errorf("attempts = %d, want %d", attempts, downloadAttempts)
	}
}

func TestDownloadFile_AllFail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	if err := downloadFile(context.Background(), ts.URL, filepath.Join(t.TempDir(), "fail.txt")); err == nil {
		t.Error("expected error after all retries exhausted")
	}
}

func TestDownloadFile_Cancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := downloadFile(ctx, ts.URL, filepath.Join(t.TempDir(), "x")); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestFetch_Local(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.json")
	os.WriteFile(src, []byte(`{}`), 0o644)

	for _, in := range []string{src, "file://" + src} {
		dest := filepath.Join(dir, "copy.json")
		if err := fetch(context.Background(), in, dest); err != nil {
			t.Fatalf("fetch(%q): %v", in, err)
		}
		if data, _ := os.ReadFile(dest); string(data) != `{}` {
			t.Errorf("fetch(%q) copied %q", in, data)
		}
	}
	if err := fetch(context.Background(), filepath.Join(dir, "missing"), filepath.Join(dir, "x")); err == nil {
		t.Error("expected error for missing local file")
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte(body))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func TestUnzipFile(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "a.zip")
	writeZip(t, archive, map[string]string{"export/README.txt": "hi", "export/marks.csv": "country,name\n"})

	out := filepath.Join(dir, "out")
	ensureDir(out)
	paths, err := unzipFile(archive, out)
	if err != nil {
		t.Fatalf("unzipFile: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
	csvPath, ok := firstWithExt(paths, ".CSV")
	if !ok || filepath.Base(csvPath) != "marks.csv" {
		t.Errorf("firstWithExt = %q, %v", csvPath, ok)
	}
}
