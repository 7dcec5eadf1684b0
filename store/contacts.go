package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Option configures a store.
type Option func(*storeConfig)

type storeConfig struct {
	now func() time.Time
}

// WithClock overrides the clock used for date computations.
func WithClock(now func() time.Time) Option {
	return func(c *storeConfig) {
		c.now = now
	}
}

func newStoreConfig(opts []Option) storeConfig {
	config := storeConfig{now: time.Now}
	for _, opt := range opts {
		opt(&config)
	}
	return config
}

type contactStore struct {
	mu        sync.RWMutex
	persister Persister[Contact]
	contacts  []Contact
	now       func() time.Time
}

var _ ContactStore = (*contactStore)(nil)

// OpenContactStore loads the whole contact collection from persister.
// The store owns the persister and closes it on Close.
func OpenContactStore(ctx context.Context, persister Persister[Contact], opts ...Option) (ContactStore, error) {
	contacts, err := persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load contacts: %w", err)
	}

	config := newStoreConfig(opts)
	return &contactStore{
		persister: persister,
		contacts:  contacts,
		now:       config.now,
	}, nil
}

func (s *contactStore) ListContacts(_ context.Context) ([]Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.contacts), nil
}

func (s *contactStore) CountContacts(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contacts), nil
}

func (s *contactStore) AddContact(ctx context.Context, c Contact) error {
	if err := validateContact(c); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, append(slices.Clip(s.contacts), c))
}

func (s *contactStore) SearchContacts(_ context.Context, query string) ([]Contact, error) {
	query = strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := []Contact{}
	for _, c := range s.contacts {
		if strings.Contains(strings.ToLower(c.Name), query) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

func (s *contactStore) EditContact(ctx context.Context, name string, patch ContactPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.contacts, func(c Contact) bool {
		return strings.EqualFold(c.Name, name)
	})
	if i < 0 {
		return ErrContactNotFound
	}

	if err := validatePatch(patch); err != nil {
		return err
	}

	next := slices.Clone(s.contacts)
	next[i] = patch.apply(next[i])
	return s.commit(ctx, next)
}

func (s *contactStore) DeleteContact(ctx context.Context, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(s.contacts), func(c Contact) bool {
		return strings.EqualFold(c.Name, name)
	})
	removed := len(s.contacts) - len(next)
	if removed == 0 {
		return 0, ErrContactNotFound
	}

	if err := s.commit(ctx, next); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *contactStore) UpcomingBirthdays(_ context.Context, days int) ([]Contact, error) {
	today := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	upcoming := []Contact{}
	for _, c := range s.contacts {
		if c.Birthday == "" {
			continue
		}
		ok, err := BirthdayWithin(c.Birthday, today, days)
		if err != nil {
			// Records written by hand may carry a malformed date.
			continue
		}
		if ok {
			upcoming = append(upcoming, c)
		}
	}
	return upcoming, nil
}

func (s *contactStore) Close() error {
	return s.persister.Close()
}

// commit persists next and only then makes it the in-memory collection.
func (s *contactStore) commit(ctx context.Context, next []Contact) error {
	if err := s.persister.Save(ctx, next); err != nil {
		return fmt.Errorf("could not save contacts: %w", err)
	}
	s.contacts = next
	return nil
}

func (p ContactPatch) apply(c Contact) Contact {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Birthday != nil {
		c.Birthday = *p.Birthday
	}
	return c
}
