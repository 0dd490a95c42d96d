package media

import (
	"database/sql"
	"testing"

	"github.com/vmunix/mediarr/internal/migrations"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// every new connection to :memory: is a fresh database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}

func addTestUser(t *testing.T, store *Store) *User {
	t.Helper()
	u := &User{DisplayName: "owner", PlexToken: "token", Permissions: PermissionAdmin}
	if err := store.AddUser(u); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	return u
}
