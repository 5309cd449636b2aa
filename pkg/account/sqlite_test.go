package account

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempSQLiteRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := OpenSQLiteRepository(filepath.Join(t.TempDir(), "accounts.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestOpenSQLiteRepository_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	repo, err := OpenSQLiteRepository(path)
	if err != nil {
		t.Fatalf("OpenSQLiteRepository: %v", err)
	}
	defer repo.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file not created: %v", err)
	}
}

// repositoryContract exercises the behaviour every Repository must share.
func repositoryContract(t *testing.T, repo interface {
	Repository
	UsernameFinder
}) {
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: err = %v, want ErrNotFound", err)
	}

	u := &User{ID: "u1", Username: "Marca", Email: "marca@example.com", Tokens: 5, CreatedAt: created}
	if err := repo.Put(ctx, u); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Username != "Marca" || got.Tokens != 5 || !got.CreatedAt.Equal(created) {
		t.Errorf("Get = %+v", got)
	}

	// Mutating the returned value must not leak into storage.
	got.Tokens = 99
	again, _ := repo.Get(ctx, "u1")
	if again.Tokens != 5 {
		t.Errorf("stored tokens = %d after mutating a copy, want 5", again.Tokens)
	}

	u.Tokens = 3
	if err := repo.Put(ctx, u); err != nil {
		t.Fatalf("Put update: %v", err)
	}
	if got, _ := repo.Get(ctx, "u1"); got.Tokens != 3 {
		t.Errorf("tokens after update = %d, want 3", got.Tokens)
	}

	byName, err := repo.FindByUsername(ctx, "marca")
	if err != nil || byName.ID != "u1" {
		t.Errorf("FindByUsername = %+v, %v", byName, err)
	}
	if _, err := repo.FindByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByUsername missing: err = %v, want ErrNotFound", err)
	}

	if err := repo.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := repo.Get(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Clear: err = %v, want ErrNotFound", err)
	}
	if err := repo.Clear(ctx, "u1"); err != nil {
		t.Errorf("Clear twice: %v", err)
	}
}

func TestSQLiteRepository_Contract(t *testing.T) {
	repositoryContract(t, tempSQLiteRepository(t))
}

func TestMemoryRepository_Contract(t *testing.T) {
	repositoryContract(t, NewMemoryRepository())
}

func TestSQLiteRepository_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.db")
	ctx := context.Background()

	repo, err := OpenSQLiteRepository(path)
	if err != nil {
		t.Fatalf("OpenSQLiteRepository: %v", err)
	}
	if err := repo.Put(ctx, &User{ID: "w1", Username: "0xabcd...9999", Tokens: 7, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	repo.Close()

	repo, err = OpenSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	u, err := repo.Get(ctx, "w1")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if u.Tokens != 7 {
		t.Errorf("tokens = %d, want 7", u.Tokens)
	}
}
