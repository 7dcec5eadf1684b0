package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type noteStore struct {
	mu        sync.RWMutex
	persister Persister[Note]
	notes     []Note
}

var _ NoteStore = (*noteStore)(nil)

// OpenNoteStore loads the whole note collection from persister. Notes
// persisted without an id get one, and the collection is written back.
func OpenNoteStore(ctx context.Context, persister Persister[Note]) (NoteStore, error) {
	notes, err := persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load notes: %w", err)
	}

	assigned := false
	for i := range notes {
		if notes[i].ID == uuid.Nil {
			notes[i].ID = uuid.New()
			assigned = true
		}
		if notes[i].Tags == nil {
			notes[i].Tags = []string{}
		}
	}

	s := &noteStore{persister: persister}
	if assigned {
		if err := s.commit(ctx, notes); err != nil {
			return nil, err
		}
	} else {
		s.notes = notes
	}
	return s, nil
}

func (s *noteStore) ListNotes(_ context.Context) ([]Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNotes(s.notes, func(Note) bool { return true }), nil
}

func (s *noteStore) CountNotes(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes), nil
}

func (s *noteStore) AddNote(ctx context.Context, text string, tags []string) (Note, error) {
	note := Note{
		ID:   uuid.New(),
		Text: text,
		Tags: cloneTags(tags),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, append(slices.Clip(s.notes), note)); err != nil {
		return Note{}, err
	}
	return cloneNote(note), nil
}

func (s *noteStore) SearchNotesByText(_ context.Context, query string) ([]Note, error) {
	query = strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneNotes(s.notes, func(n Note) bool {
		return strings.Contains(strings.ToLower(n.Text), query)
	}), nil
}

func (s *noteStore) SearchNotesByTag(_ context.Context, tag string) ([]Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneNotes(s.notes, func(n Note) bool {
		return slices.ContainsFunc(n.Tags, func(t string) bool {
			return strings.EqualFold(t, tag)
		})
	}), nil
}

func (s *noteStore) EditNoteAt(ctx context.Context, index int, text string, tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.notes) {
		return &IndexError{Index: index, Len: len(s.notes)}
	}
	return s.editLocked(ctx, index, text, tags)
}

func (s *noteStore) DeleteNoteAt(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.notes) {
		return &IndexError{Index: index, Len: len(s.notes)}
	}
	return s.commit(ctx, slices.Delete(slices.Clone(s.notes), index, index+1))
}

func (s *noteStore) GetNote(_ context.Context, id uuid.UUID) (*Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNoteNotFound
	}
	note := cloneNote(s.notes[i])
	return &note, nil
}

func (s *noteStore) EditNote(ctx context.Context, id uuid.UUID, text string, tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNoteNotFound
	}
	return s.editLocked(ctx, i, text, tags)
}

func (s *noteStore) DeleteNote(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNoteNotFound
	}
	return s.commit(ctx, slices.Delete(slices.Clone(s.notes), i, i+1))
}

func (s *noteStore) Close() error {
	return s.persister.Close()
}

// editLocked overwrites the text and replaces the tags only when a
// non-empty replacement is given.
func (s *noteStore) editLocked(ctx context.Context, i int, text string, tags []string) error {
	next := slices.Clone(s.notes)
	next[i].Text = text
	if len(tags) > 0 {
		next[i].Tags = cloneTags(tags)
	}
	return s.commit(ctx, next)
}

func (s *noteStore) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.notes, func(n Note) bool { return n.ID == id })
}

func (s *noteStore) commit(ctx context.Context, next []Note) error {
	if err := s.persister.Save(ctx, next); err != nil {
		return fmt.Errorf("could not save notes: %w", err)
	}
	s.notes = next
	return nil
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return slices.Clone(tags)
}

func cloneNote(n Note) Note {
	n.Tags = cloneTags(n.Tags)
	return n
}

func cloneNotes(notes []Note, keep func(Note) bool) []Note {
	out := []Note{}
	for _, n := range notes {
		if keep(n) {
			out = append(out, cloneNote(n))
		}
	}
	return out
}
