package store

import (
	"context"

	"github.com/google/uuid"
)

type Contact struct {
	Name     string `json:"name" yaml:"name"`
	Address  string `json:"address" yaml:"address"`
	Phone    string `json:"phone" yaml:"phone"`
	Email    string `json:"email" yaml:"email"`
	Birthday string `json:"birthday" yaml:"birthday"`
}

// ContactPatch holds the fields to merge into an existing contact.
// Nil fields keep their current value.
type ContactPatch struct {
	Name     *string
	Address  *string
	Phone    *string
	Email    *string
	Birthday *string
}

type Note struct {
	ID   uuid.UUID `json:"id" yaml:"id"`
	Text string    `json:"text" yaml:"text"`
	Tags []string  `json:"tags" yaml:"tags"`
}

type ContactStore interface {
	ListContacts(ctx context.Context) ([]Contact, error)
	CountContacts(ctx context.Context) (int, error)
	AddContact(ctx context.Context, c Contact) error
	SearchContacts(ctx context.Context, query string) ([]Contact, error)
	EditContact(ctx context.Context, name string, patch ContactPatch) error
	DeleteContact(ctx context.Context, name string) (int, error)
	UpcomingBirthdays(ctx context.Context, days int) ([]Contact, error)
	Close() error
}

type NoteStore interface {
	ListNotes(ctx context.Context) ([]Note, error)
	CountNotes(ctx context.Context) (int, error)
	AddNote(ctx context.Context, text string, tags []string) (Note, error)
	SearchNotesByText(ctx context.Context, query string) ([]Note, error)
	SearchNotesByTag(ctx context.Context, tag string) ([]Note, error)
	EditNoteAt(ctx context.Context, index int, text string, tags []string) error
	DeleteNoteAt(ctx context.Context, index int) error
	GetNote(ctx context.Context, id uuid.UUID) (*Note, error)
	EditNote(ctx context.Context, id uuid.UUID, text string, tags []string) error
	DeleteNote(ctx context.Context, id uuid.UUID) error
	Close() error
}

// Persister loads and stores a whole collection at once.
type Persister[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, records []T) error
	Close() error
}
