package store

import (
	"context"
	"os"
	"reflect"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func emailGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z0-9]{1,8}[._]?[a-z0-9]{1,8}@[a-z0-9]{1,10}\.[a-z]{2,6}`)
}

func phoneGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`\+?[0-9][0-9 ]{0,14}`)
}

func nameGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z][A-Za-z ]{0,20}`)
}

func birthdayGenerator() *rapid.Generator[string] {
	return rapid.SampledFrom([]string{"", "1990-01-31", "2000-02-29", "1985-12-24", "2010-06-15"})
}

// flipCase randomly changes the case of each letter in s.
func flipCase(t *rapid.T, s string) string {
	var b strings.Builder
	for _, r := range s {
		if rapid.Bool().Draw(t, "upper") {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func newRapidDir(t *rapid.T) string {
	dir, err := os.MkdirTemp("", "pim_rapid_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	return dir
}

func TestAddThenSearchProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dir := newRapidDir(t)
		defer os.RemoveAll(dir)

		ctx := context.Background()
		s, err := OpenContactStore(ctx, NewFilePersister[Contact](dir, "contacts", JSONCodec))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer s.Close()

		c := Contact{
			Name:     nameGenerator().Draw(t, "name"),
			Address:  rapid.String().Draw(t, "address"),
			Phone:    phoneGenerator().Draw(t, "phone"),
			Email:    emailGenerator().Draw(t, "email"),
			Birthday: birthdayGenerator().Draw(t, "birthday"),
		}
		if err := s.AddContact(ctx, c); err != nil {
			t.Fatalf("add %+v: %v", c, err)
		}

		start := rapid.IntRange(0, len(c.Name)-1).Draw(t, "start")
		end := rapid.IntRange(start+1, len(c.Name)).Draw(t, "end")
		query := flipCase(t, c.Name[start:end])

		got, err := s.SearchContacts(ctx, query)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(got) != 1 || got[0] != c {
			t.Fatalf("search %q: got %+v, want [%+v]", query, got, c)
		}
	})
}

func TestPersistRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dir := newRapidDir(t)
		defer os.RemoveAll(dir)

		ctx := context.Background()
		codec := rapid.SampledFrom([]Codec{JSONCodec, YAMLCodec}).Draw(t, "codec")

		notes, err := OpenNoteStore(ctx, NewFilePersister[Note](dir, "notes", codec))
		if err != nil {
			t.Fatalf("open: %v", err)
		}

		n := rapid.IntRange(0, 8).Draw(t, "count")
		for i := 0; i < n; i++ {
			text := rapid.StringMatching(`[A-Za-z0-9 .,!?]{0,40}`).Draw(t, "text")
			tags := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,8}`), 0, 4).Draw(t, "tags")
			if _, err := notes.AddNote(ctx, text, tags); err != nil {
				t.Fatalf("add: %v", err)
			}
		}

		want, err := notes.ListNotes(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		notes.Close()

		reopened, err := OpenNoteStore(ctx, NewFilePersister[Note](dir, "notes", codec))
		if err != nil {
			t.Fatalf("reopen: %v", err)
		}
		defer reopened.Close()

		got, err := reopened.ListNotes(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
		}
	})
}

func TestInvalidEmailNeverMutates(t *testing.T) {
	ctx := context.Background()
	s, err := OpenContactStore(ctx, NewFilePersister[Contact](t.TempDir(), "contacts", JSONCodec))
	require.NoError(t, err)
	defer s.Close()

	rapid.Check(t, func(rt *rapid.T) {
		// Never contains a domain dot.
		email := rapid.StringMatching(`[a-z]{2,6}(@@|@)?[a-z]{0,6}`).Draw(rt, "email")

		err := s.AddContact(ctx, Contact{Name: "x", Phone: "123", Email: email})
		if err == nil {
			rt.Fatalf("email %q accepted", email)
		}

		count, err := s.CountContacts(ctx)
		if err != nil || count != 0 {
			rt.Fatalf("collection changed: count=%d err=%v", count, err)
		}
	})
}
