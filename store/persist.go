package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Codec encodes a collection to and from its file representation.
type Codec interface {
	Extension() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) Extension() string { return ".json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "    ")
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type yamlCodec struct{}

func (yamlCodec) Extension() string { return ".yaml" }

func (yamlCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

var (
	JSONCodec Codec = jsonCodec{}
	YAMLCodec Codec = yamlCodec{}
)

// FilePersister keeps a collection in a single file, rewritten in full on
// every save through a temp file and rename.
type FilePersister[T any] struct {
	dir      string
	filename string
	codec    Codec
}

var _ Persister[Contact] = (*FilePersister[Contact])(nil)

// NewFilePersister stores the collection name in dir, e.g. "contacts"
// becomes dir/contacts.json with the JSON codec.
func NewFilePersister[T any](dir, name string, codec Codec) *FilePersister[T] {
	if codec == nil {
		codec = JSONCodec
	}
	return &FilePersister[T]{
		dir:      dir,
		filename: filepath.Join(dir, name+codec.Extension()),
		codec:    codec,
	}
}

func (p *FilePersister[T]) Path() string {
	return p.filename
}

func (p *FilePersister[T]) Load(_ context.Context) ([]T, error) {
	b, err := os.ReadFile(p.filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", p.filename, err)
	}

	records := []T{}
	if len(bytes.TrimSpace(b)) == 0 {
		return records, nil
	}
	if err := p.codec.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", p.filename, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func (p *FilePersister[T]) Save(_ context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}

	if err := os.MkdirAll(p.dir, 0o750); err != nil {
		return fmt.Errorf("mkdir data dir: %w", err)
	}

	b, err := p.codec.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", p.filename, err)
	}

	tmp := p.filename + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open tmp file: %w", err)
	}

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return fmt.Errorf("write tmp file: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("fsync tmp file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close tmp file: %w", err)
	}

	if err := os.Rename(tmp, p.filename); err != nil {
		return fmt.Errorf("rename tmp file: %w", err)
	}

	if dirF, err := os.Open(p.dir); err == nil {
		_ = dirF.Sync()
		_ = dirF.Close()
	}

	return nil
}

func (p *FilePersister[T]) Close() error {
	return nil
}
