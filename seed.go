package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/brunoscheufler/pim/store"
	"github.com/brunoscheufler/pim/telemetry"
)

var (
	seedFirstNames = []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi", "Ivan", "Judy", "Mallory", "Niaj", "Olivia", "Peggy", "Rupert", "Sybil", "Trent", "Victor", "Walter"}
	seedLastNames  = []string{"Smith", "Jones", "Taylor", "Brown", "Wilson", "Evans", "Thomas", "Roberts", "Walker", "Wright"}
	seedStreets    = []string{"High Street", "Station Road", "Main Street", "Park Road", "Church Lane", "Victoria Road"}
	seedNoteTexts  = []string{"Call %s about the weekend", "Buy a present for %s", "Return the book to %s", "Dinner with %s on Friday", "Ask %s for the recipe", "Send %s the meeting notes"}
	seedTags       = []string{"personal", "work", "family", "shopping", "urgent", "later"}
)

type SeedOptions struct {
	Contacts int
	Notes    int
	// Source makes the generated data reproducible.
	Source rand.Source
}

// Seeder fills empty stores with generated demo records.
type Seeder struct {
	contacts store.ContactStore
	notes    store.NoteStore
	logger   *slog.Logger
	options  SeedOptions
	rng      *rand.Rand
}

func NewSeeder(contacts store.ContactStore, notes store.NoteStore, tel *telemetry.Telemetry, options SeedOptions) *Seeder {
	if options.Source == nil {
		now := uint64(time.Now().UnixNano())
		options.Source = rand.NewPCG(now, now>>32)
	}

	return &Seeder{
		contacts: contacts,
		notes:    notes,
		logger:   tel.GetLogger(),
		options:  options,
		rng:      rand.New(options.Source),
	}
}

// Seed generates records for each collection that is still empty and
// returns how many contacts and notes were added.
func (s *Seeder) Seed(ctx context.Context) (int, int, error) {
	contacts, err := s.seedContacts(ctx)
	if err != nil {
		return contacts, 0, err
	}

	notes, err := s.seedNotes(ctx)
	return contacts, notes, err
}

func (s *Seeder) seedContacts(ctx context.Context) (int, error) {
	count, err := s.contacts.CountContacts(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("Skipping contact seeding, store is not empty", "contacts", count)
		return 0, nil
	}

	for i := range s.options.Contacts {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := s.contacts.AddContact(ctx, s.generateContact(i)); err != nil {
			return i, fmt.Errorf("failed to seed contact %d: %w", i, err)
		}
	}

	s.logger.Info("Seeded contacts", "count", s.options.Contacts)
	return s.options.Contacts, nil
}

func (s *Seeder) seedNotes(ctx context.Context) (int, error) {
	count, err := s.notes.CountNotes(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("Skipping note seeding, store is not empty", "notes", count)
		return 0, nil
	}

	for i := range s.options.Notes {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		text, tags := s.generateNote()
		if _, err := s.notes.AddNote(ctx, text, tags); err != nil {
			return i, fmt.Errorf("failed to seed note %d: %w", i, err)
		}
	}

	s.logger.Info("Seeded notes", "count", s.options.Notes)
	return s.options.Notes, nil
}

func (s *Seeder) generateContact(i int) store.Contact {
	first := pick(s.rng, seedFirstNames)
	last := pick(s.rng, seedLastNames)

	born := time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, s.rng.IntN(55*365))

	return store.Contact{
		Name:     first + " " + last,
		Address:  fmt.Sprintf("%d %s", s.rng.IntN(200)+1, pick(s.rng, seedStreets)),
		Phone:    fmt.Sprintf("+44 20 7946 %04d", s.rng.IntN(10000)),
		Email:    fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
		Birthday: born.Format(store.BirthdayLayout),
	}
}

func (s *Seeder) generateNote() (string, []string) {
	text := fmt.Sprintf(pick(s.rng, seedNoteTexts), pick(s.rng, seedFirstNames))

	tags := make([]string, 0, 2)
	for range s.rng.IntN(3) {
		tag := pick(s.rng, seedTags)
		if !strings.Contains(strings.Join(tags, ","), tag) {
			tags = append(tags, tag)
		}
	}
	return text, tags
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
