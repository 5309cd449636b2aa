package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var (
	_ Repository     = (*SQLiteRepository)(nil)
	_ UsernameFinder = (*SQLiteRepository)(nil)
	_ Repository     = (*MemoryRepository)(nil)
	_ UsernameFinder = (*MemoryRepository)(nil)
)

// SQLiteRepository stores users in a SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLiteRepository opens (or creates) the database at path and ensures
// the users table exists.
func OpenSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open accounts db: %w", err)
	}

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id          TEXT PRIMARY KEY,
			username    TEXT NOT NULL,
			email       TEXT NOT NULL DEFAULT '',
			tokens      INTEGER NOT NULL DEFAULT 0,
			created_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS users_username ON users (username COLLATE NOCASE)`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create users table: %w", err)
		}
	}
	return &SQLiteRepository{db: db}, nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

const userColumns = `id, username, email, tokens, created_at`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created int64
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Tokens, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return &u, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? COLLATE NOCASE ORDER BY created_at LIMIT 1`, username))
}

func (r *SQLiteRepository) Put(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET username = excluded.username, email = excluded.email, tokens = excluded.tokens`,
		u.ID, u.Username, u.Email, u.Tokens, u.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("put user %s: %w", u.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("clear user %s: %w", id, err)
	}
	return nil
}
