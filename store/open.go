package store

import (
	"context"
	"fmt"
	"os"
)

type Backend string

const (
	BackendJSON   Backend = "json"
	BackendYAML   Backend = "yaml"
	BackendSQLite Backend = "sqlite"
)

func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendJSON, BackendYAML, BackendSQLite:
		return b, nil
	case "":
		return BackendJSON, nil
	default:
		return "", fmt.Errorf("unknown storage backend %q (must be json, yaml or sqlite)", s)
	}
}

// StoreOptions configures store creation
type StoreOptions struct {
	Backend Backend
	// DataDir holds the collection files, or the .data folder for sqlite.
	DataDir string
	// Name of the sqlite database file
	Name   string
	Config DatabaseConfig
	Store  []Option
}

// DefaultStoreOptions returns sensible defaults for store creation
func DefaultStoreOptions(dataDir string) StoreOptions {
	return StoreOptions{
		Backend: BackendJSON,
		DataDir: dataDir,
		Name:    "pim",
		Config:  DefaultDatabaseConfig(),
	}
}

// OpenStores creates the data directory when missing and loads both
// collections with the configured backend.
func OpenStores(ctx context.Context, opts StoreOptions) (ContactStore, NoteStore, error) {
	if err := os.MkdirAll(opts.DataDir, 0o750); err != nil {
		return nil, nil, fmt.Errorf("could not create data dir: %w", err)
	}

	contactPersister, notePersister, err := newPersisters(opts)
	if err != nil {
		return nil, nil, err
	}

	contacts, err := OpenContactStore(ctx, contactPersister, opts.Store...)
	if err != nil {
		contactPersister.Close()
		notePersister.Close()
		return nil, nil, err
	}

	notes, err := OpenNoteStore(ctx, notePersister)
	if err != nil {
		contacts.Close()
		notePersister.Close()
		return nil, nil, err
	}

	return contacts, notes, nil
}

func newPersisters(opts StoreOptions) (Persister[Contact], Persister[Note], error) {
	switch opts.Backend {
	case BackendJSON, "":
		return NewFilePersister[Contact](opts.DataDir, "contacts", JSONCodec),
			NewFilePersister[Note](opts.DataDir, "notes", JSONCodec), nil
	case BackendYAML:
		return NewFilePersister[Contact](opts.DataDir, "contacts", YAMLCodec),
			NewFilePersister[Note](opts.DataDir, "notes", YAMLCodec), nil
	case BackendSQLite:
		contacts, err := NewSQLitePersister[Contact](SQLiteOptions{
			Name:     opts.Name,
			BasePath: opts.DataDir,
			Table:    "contacts",
			Config:   opts.Config,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("could not create contact persister: %w", err)
		}
		notes, err := NewSQLitePersister[Note](SQLiteOptions{
			Name:     opts.Name,
			BasePath: opts.DataDir,
			Table:    "notes",
			Config:   opts.Config,
		})
		if err != nil {
			contacts.Close()
			return nil, nil, fmt.Errorf("could not create note persister: %w", err)
		}
		return contacts, notes, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
