package requests

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/media"
	"github.com/vmunix/mediarr/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err)
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T {
	return &v
}

// recorder captures published events and notifications.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
	notes  []events.Notification
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Notify(_ context.Context, n events.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.NotifyAdmin = n.Kind.NotifiesAdmin()
	r.notes = append(r.notes, n)
}

func (r *recorder) kinds() []events.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.NotificationKind, 0, len(r.notes))
	for _, n := range r.notes {
		out = append(out, n.Kind)
	}
	return out
}

func (r *recorder) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

func addUser(t *testing.T, store *media.Store, name string, perms media.Permission) *media.User {
	t.Helper()
	u := &media.User{DisplayName: name, PlexToken: name + "-token", Permissions: perms}
	require.NoError(t, store.AddUser(u))
	return u
}
