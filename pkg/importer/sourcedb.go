package importer

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrUnknownSource is returned for adapter IDs missing from import_sources.
var ErrUnknownSource = errors.New("source not found in import_sources")

// Source is a row of the import_sources table.
type Source struct {
	AdapterID   string
	Format      string
	Description string
	SourceURL   string
	License     string
	LastCheck   *int64
	LastStatus  *int
	LastError   *string
	LastImport  *int64
	LastRecords *int
	UpdatedAt   int64
}

// SourceDB persists source URLs and their check and import history.
type SourceDB struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSourceDB opens (or creates) the SQLite database at path.
func OpenSourceDB(path string) (*SourceDB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open source db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS import_sources (
		adapter_id   TEXT PRIMARY KEY,
		format       TEXT NOT NULL,
		description  TEXT NOT NULL,
		source_url   TEXT NOT NULL,
		license      TEXT NOT NULL DEFAULT '',
		last_check   INTEGER,
		last_status  INTEGER,
		last_error   TEXT,
		last_import  INTEGER,
		last_records INTEGER,
		updated_at   INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create import_sources table: %w", err)
	}
	return &SourceDB{db: db, now: time.Now}, nil
}

func (s *SourceDB) Close() error {
	return s.db.Close()
}

// Seed inserts a row per adapter. Existing rows are left alone so manual URL
// overrides survive restarts.
func (s *SourceDB) Seed(adapters []Adapter) error {
	const q = `INSERT OR IGNORE INTO import_sources
		(adapter_id, format, description, source_url, license, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	now := s.now().Unix()
	for _, a := range adapters {
		if _, err := s.db.Exec(q, a.ID(), a.Format(), a.Description(), a.DefaultURL(), a.License(), now); err != nil {
			return fmt.Errorf("seed %s: %w", a.ID(), err)
		}
	}
	return nil
}

// GetURL returns the configured source URL for an adapter.
func (s *SourceDB) GetURL(adapterID string) (string, error) {
	var url string
	err := s.db.QueryRow(`SELECT source_url FROM import_sources WHERE adapter_id = ?`, adapterID).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", adapterID, ErrUnknownSource)
	}
	if err != nil {
		return "", fmt.Errorf("get url for %s: %w", adapterID, err)
	}
	return url, nil
}

// SetURL overrides the source URL for an adapter.
func (s *SourceDB) SetURL(adapterID, url string) error {
	res, err := s.db.Exec(
		`UPDATE import_sources SET source_url = ?, updated_at = ? WHERE adapter_id = ?`,
		url, s.now().Unix(), adapterID,
	)
	if err != nil {
		return fmt.Errorf("set url for %s: %w", adapterID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", adapterID, ErrUnknownSource)
	}
	return nil
}

// UpdateCheck stores the result of an availability check.
func (s *SourceDB) UpdateCheck(adapterID string, status int, checkErr string) error {
	var errPtr *string
	if checkErr != "" {
		errPtr = &checkErr
	}
	_, err := s.db.Exec(
		`UPDATE import_sources SET last_check = ?, last_status = ?, last_error = ? WHERE adapter_id = ?`,
		s.now().Unix(), status, errPtr, adapterID,
	)
	if err != nil {
		return fmt.Errorf("update check for %s: %w", adapterID, err)
	}
	return nil
}

// RecordImport stores when an adapter last imported and how many records it wrote.
func (s *SourceDB) RecordImport(adapterID string, records int) error {
	_, err := s.db.Exec(
		`UPDATE import_sources SET last_import = ?, last_records = ? WHERE adapter_id = ?`,
		s.now().Unix(), records, adapterID,
	)
	if err != nil {
		return fmt.Errorf("record import for %s: %w", adapterID, err)
	}
	return nil
}

// ListSources returns every row ordered by adapter_id.
func (s *SourceDB) ListSources() ([]Source, error) {
	rows, err := s.db.Query(`SELECT adapter_id, format, description, source_url, license,
		last_check, last_status, last_error, last_import, last_records, updated_at
		FROM import_sources ORDER BY adapter_id`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.AdapterID, &src.Format, &src.Description, &src.SourceURL, &src.License,
			&src.LastCheck, &src.LastStatus, &src.LastError, &src.LastImport, &src.LastRecords, &src.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}
