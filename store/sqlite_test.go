package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func setupSQLitePersisters(t *testing.T, dir, dbName string) (*SQLitePersister[Contact], *SQLitePersister[Note]) {
	config := DatabaseConfig{
		ConnMaxLifetime: 5 * time.Minute,
		EnableWAL:       true,
	}

	contacts, err := NewSQLitePersister[Contact](SQLiteOptions{
		Name:     dbName,
		BasePath: dir,
		Table:    "contacts",
		Config:   config,
	})
	if err != nil {
		t.Fatalf("Failed to create contact persister: %v", err)
	}

	notes, err := NewSQLitePersister[Note](SQLiteOptions{
		Name:     dbName,
		BasePath: dir,
		Table:    "notes",
		Config:   config,
	})
	if err != nil {
		t.Fatalf("Failed to create note persister: %v", err)
	}

	return contacts, notes
}

func TestSQLitePersisterRoundTrip(t *testing.T) {
	contacts, notes := setupSQLitePersisters(t, t.TempDir(), "test_round_trip")
	defer contacts.Close()
	defer notes.Close()

	ctx := context.Background()

	loaded, err := contacts.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded, "fresh table should load as an empty collection")
	require.NotNil(t, loaded)

	wantContacts := []Contact{
		{Name: "Alice", Address: "1 Main St", Phone: "+1 555 123", Email: "alice@example.com", Birthday: "1990-04-01"},
		{Name: "Bob", Address: "2 Side St", Phone: "555 000", Email: "bob.b@example.org", Birthday: ""},
	}
	require.NoError(t, contacts.Save(ctx, wantContacts))

	gotContacts, err := contacts.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, wantContacts, gotContacts)

	wantNotes := []Note{
		{ID: uuid.New(), Text: "buy milk", Tags: []string{"shopping"}},
		{ID: uuid.New(), Text: "call mom", Tags: []string{}},
	}
	require.NoError(t, notes.Save(ctx, wantNotes))

	gotNotes, err := notes.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, wantNotes, gotNotes)

	// A shorter collection replaces the previous rows entirely.
	require.NoError(t, notes.Save(ctx, wantNotes[1:]))
	gotNotes, err = notes.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, wantNotes[1:], gotNotes)
}

func TestSQLitePersisterSharedFile(t *testing.T) {
	dir := t.TempDir()

	_, notes1 := setupSQLitePersisters(t, dir, "test_shared")
	defer notes1.Close()
	_, notes2 := setupSQLitePersisters(t, dir, "test_shared")
	defer notes2.Close()

	ctx := context.Background()

	want := []Note{{ID: uuid.New(), Text: "written by one", Tags: []string{"a"}}}
	require.NoError(t, notes1.Save(ctx, want))

	got, err := notes2.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got, "a second connection should observe the committed collection")
}

func TestSQLitePersisterConcurrentSaves(t *testing.T) {
	dir := t.TempDir()

	_, notes1 := setupSQLitePersisters(t, dir, "test_concurrent")
	defer notes1.Close()
	_, notes2 := setupSQLitePersisters(t, dir, "test_concurrent")
	defer notes2.Close()

	ctx := context.Background()

	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(writer int) {
			defer wg.Done()

			p := notes1
			if writer%2 == 1 {
				p = notes2
			}

			collection := make([]Note, writer+1)
			for j := range collection {
				collection[j] = Note{ID: uuid.New(), Text: fmt.Sprintf("writer %d note %d", writer, j), Tags: []string{}}
			}

			if err := p.Save(ctx, collection); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("writer %d: %w", writer, err))
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("Concurrent saves failed: %v", errs)
	}

	// Whole-collection saves are transactional: the result is exactly one
	// writer's collection, never a mix.
	got, err := notes1.Load(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	prefix := got[0].Text[:len("writer ")+1]
	for _, n := range got {
		require.Contains(t, n.Text, prefix)
	}
}

func TestSQLitePersisterRejectsTableName(t *testing.T) {
	_, err := NewSQLitePersister[Note](SQLiteOptions{
		Name:     "bad",
		BasePath: t.TempDir(),
		Table:    "notes; DROP TABLE notes",
		Config:   DefaultDatabaseConfig(),
	})
	require.Error(t, err)
}

func TestSQLitePersisterHealthCheck(t *testing.T) {
	contacts, notes := setupSQLitePersisters(t, t.TempDir(), "test_health")
	defer notes.Close()

	ctx := context.Background()
	require.NoError(t, contacts.HealthCheck(ctx))
	require.NoError(t, contacts.Close())
	require.Error(t, contacts.HealthCheck(ctx))
}

func TestIsSQLiteBusyError(t *testing.T) {
	require.False(t, isSQLiteBusyError(nil))
	require.False(t, isSQLiteBusyError(errors.New("no such table: notes")))
	require.True(t, isSQLiteBusyError(errors.New("database is locked (5) (SQLITE_BUSY)")))
	require.True(t, isSQLiteBusyError(fmt.Errorf("wrapped: %w", errors.New("SQLITE_BUSY"))))
}
