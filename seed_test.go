package main

import (
	"context"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/brunoscheufler/pim/store"
	"github.com/brunoscheufler/pim/telemetry"
	"github.com/stretchr/testify/require"
)

func openTestStores(t *testing.T) (store.ContactStore, store.NoteStore) {
	t.Helper()

	contacts, notes, err := store.OpenStores(context.Background(), store.DefaultStoreOptions(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() {
		contacts.Close()
		notes.Close()
	})
	return contacts, notes
}

func TestSeeder_FillsEmptyStores(t *testing.T) {
	ctx := context.Background()
	contacts, notes := openTestStores(t)
	tel := telemetry.New(telemetry.WithOutput(io.Discard))

	seeder := NewSeeder(contacts, notes, tel, SeedOptions{
		Contacts: 25,
		Notes:    40,
		Source:   rand.NewPCG(1, 2),
	})

	addedContacts, addedNotes, err := seeder.Seed(ctx)
	require.NoError(t, err)
	require.Equal(t, 25, addedContacts)
	require.Equal(t, 40, addedNotes)

	all, err := contacts.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 25)
	for _, c := range all {
		require.True(t, store.ValidEmail(c.Email), c.Email)
		require.True(t, store.ValidPhone(c.Phone), c.Phone)
		require.True(t, store.ValidBirthday(c.Birthday), c.Birthday)
	}

	count, err := notes.CountNotes(ctx)
	require.NoError(t, err)
	require.Equal(t, 40, count)
}

func TestSeeder_SkipsPopulatedStores(t *testing.T) {
	ctx := context.Background()
	contacts, notes := openTestStores(t)
	tel := telemetry.New(telemetry.WithOutput(io.Discard))

	_, err := notes.AddNote(ctx, "keep me", nil)
	require.NoError(t, err)

	addedContacts, addedNotes, err := NewSeeder(contacts, notes, tel, SeedOptions{Contacts: 3, Notes: 3}).Seed(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, addedContacts)
	require.Zero(t, addedNotes)

	count, err := notes.CountNotes(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestSeeder_Reproducible(t *testing.T) {
	tel := telemetry.New(telemetry.WithOutput(io.Discard))

	a := NewSeeder(nil, nil, tel, SeedOptions{Source: rand.NewPCG(7, 7)})
	b := NewSeeder(nil, nil, tel, SeedOptions{Source: rand.NewPCG(7, 7)})

	for i := range 10 {
		require.Equal(t, a.generateContact(i), b.generateContact(i))
	}
}
