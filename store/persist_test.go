package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestFilePersisterMissingFile(t *testing.T) {
	for _, codec := range []Codec{JSONCodec, YAMLCodec} {
		t.Run(codec.Extension(), func(t *testing.T) {
			p := NewFilePersister[Contact](filepath.Join(t.TempDir(), "missing"), "contacts", codec)

			contacts, err := p.Load(context.Background())
			require.NoError(t, err)
			require.NotNil(t, contacts)
			require.Empty(t, contacts)
		})
	}
}

func TestFilePersisterRoundTrip(t *testing.T) {
	contacts := []Contact{
		{Name: "Alice", Address: "1 Main St", Phone: "+1 555 123", Email: "alice@example.com", Birthday: "1990-04-01"},
		{Name: "bob", Address: "", Phone: "0049 30 1234", Email: "bob_b@mail.de", Birthday: "2000-02-29"},
	}
	notes := []Note{
		{ID: uuid.New(), Text: "groceries: milk, eggs", Tags: []string{"shopping", "home"}},
		{ID: uuid.New(), Text: "no tags here", Tags: []string{}},
	}

	for _, codec := range []Codec{JSONCodec, YAMLCodec} {
		t.Run(codec.Extension(), func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()

			cp := NewFilePersister[Contact](dir, "contacts", codec)
			require.NoError(t, cp.Save(ctx, contacts))
			gotContacts, err := cp.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, contacts, gotContacts)

			np := NewFilePersister[Note](dir, "notes", codec)
			require.NoError(t, np.Save(ctx, notes))
			gotNotes, err := np.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, notes, gotNotes)

			require.FileExists(t, filepath.Join(dir, "contacts"+codec.Extension()))
			require.NoFileExists(t, cp.Path()+".tmp", "temp file should be renamed away")
		})
	}
}

func TestFilePersisterReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	raw := `[
    {
        "name": "Alice",
        "address": "Somewhere 1",
        "phone": "+44 20 7946 0000",
        "email": "alice@example.com",
        "birthday": "1985-07-14"
    }
]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "contacts.json"), []byte(raw), 0o600))

	p := NewFilePersister[Contact](dir, "contacts", JSONCodec)
	contacts, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Contact{{
		Name:     "Alice",
		Address:  "Somewhere 1",
		Phone:    "+44 20 7946 0000",
		Email:    "alice@example.com",
		Birthday: "1985-07-14",
	}}, contacts)
}

func TestFilePersisterEmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), nil, 0o600))

	notes, err := NewFilePersister[Note](dir, "notes", JSONCodec).Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, notes)
}

func TestFilePersisterCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{not json"), 0o600))

	_, err := NewFilePersister[Note](dir, "notes", JSONCodec).Load(context.Background())
	require.Error(t, err)
}

func TestFilePersisterSaveCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	p := NewFilePersister[Note](dir, "notes", nil)

	require.NoError(t, p.Save(context.Background(), nil))
	require.FileExists(t, filepath.Join(dir, "notes.json"))

	notes, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, notes)
}
