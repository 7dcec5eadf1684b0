package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/brunoscheufler/pim/store"
	"github.com/brunoscheufler/pim/telemetry"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// InputError reports free text where a number was required.
type InputError struct {
	Field string
	Value string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s must be a number, got %q", e.Field, e.Value)
}

var ErrInvalidSelection = errors.New("invalid selection")

// ContactInput holds the raw field values typed into a contact form.
type ContactInput struct {
	Name     string
	Address  string
	Phone    string
	Email    string
	Birthday string
}

// Assistant runs the menu operations against the stores. Every method
// takes the text the user entered and returns the text to display.
type Assistant struct {
	contacts store.ContactStore
	notes    store.NoteStore
	stats    *telemetry.StatsCollector
	logger   *slog.Logger
	now      func() time.Time
}

func NewAssistant(appConfig *AppConfig) *Assistant {
	a := &Assistant{
		contacts: appConfig.ContactStore,
		notes:    appConfig.NoteStore,
		logger:   slog.Default(),
		now:      time.Now,
	}
	if appConfig.Telemetry != nil {
		a.stats = appConfig.Telemetry.StatsCollector
		a.logger = appConfig.Telemetry.GetLogger()
	}
	if appConfig.Now != nil {
		a.now = appConfig.Now
	}
	return a
}

func (a *Assistant) AddContact(ctx context.Context, in ContactInput) (string, error) {
	err := a.contacts.AddContact(ctx, store.Contact{
		Name:     strings.TrimSpace(in.Name),
		Address:  strings.TrimSpace(in.Address),
		Phone:    strings.TrimSpace(in.Phone),
		Email:    strings.TrimSpace(in.Email),
		Birthday: strings.TrimSpace(in.Birthday),
	})
	if err != nil {
		return "", a.fail("add contact", err)
	}

	a.wrote(a.incContactWrite)
	a.logger.Info("contact added", "name", in.Name)
	return "Contact added successfully.", nil
}

func (a *Assistant) SearchContacts(ctx context.Context, query string) (string, error) {
	contacts, err := a.contacts.SearchContacts(ctx, query)
	if err != nil {
		return "", a.fail("search contacts", err)
	}

	a.wrote(a.incContactRead)
	if len(contacts) == 0 {
		return "No contacts found.", nil
	}
	return FormatContacts(contacts), nil
}

// FindContact returns the first contact whose name equals name, ignoring case.
func (a *Assistant) FindContact(ctx context.Context, name string) (*store.Contact, error) {
	name = strings.TrimSpace(name)
	contacts, err := a.contacts.SearchContacts(ctx, name)
	if err != nil {
		return nil, a.fail("find contact", err)
	}

	a.wrote(a.incContactRead)
	for _, c := range contacts {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, store.ErrContactNotFound
}

// EditContact merges the non-blank fields of in into the contact called name.
func (a *Assistant) EditContact(ctx context.Context, name string, in ContactInput) (string, error) {
	var patch store.ContactPatch
	set := func(dst **string, value string) {
		if v := strings.TrimSpace(value); v != "" {
			*dst = &v
		}
	}
	set(&patch.Name, in.Name)
	set(&patch.Address, in.Address)
	set(&patch.Phone, in.Phone)
	set(&patch.Email, in.Email)
	set(&patch.Birthday, in.Birthday)

	if err := a.contacts.EditContact(ctx, strings.TrimSpace(name), patch); err != nil {
		return "", a.fail("edit contact", err)
	}

	a.wrote(a.incContactWrite)
	a.logger.Info("contact updated", "name", name)
	return "Contact updated successfully.", nil
}

func (a *Assistant) DeleteContact(ctx context.Context, name string) (string, error) {
	removed, err := a.contacts.DeleteContact(ctx, strings.TrimSpace(name))
	if err != nil {
		return "", a.fail("delete contact", err)
	}

	a.wrote(a.incContactWrite)
	a.logger.Info("contacts deleted", "name", name, "count", removed)
	if removed > 1 {
		return fmt.Sprintf("%d contacts deleted successfully.", removed), nil
	}
	return "Contact deleted successfully.", nil
}

func (a *Assistant) AddNote(ctx context.Context, text, tags string) (string, error) {
	note, err := a.notes.AddNote(ctx, text, ParseTags(tags))
	if err != nil {
		return "", a.fail("add note", err)
	}

	a.wrote(a.incNoteWrite)
	a.logger.Info("note added", "id", note.ID, "tags", len(note.Tags))
	return "Note added with tags.", nil
}

func (a *Assistant) ListNotes(ctx context.Context) (string, error) {
	notes, err := a.notes.ListNotes(ctx)
	if err != nil {
		return "", a.fail("list notes", err)
	}

	a.wrote(a.incNoteRead)
	if len(notes) == 0 {
		return "No notes yet.", nil
	}

	lines := make([]string, 0, len(notes))
	for i, n := range notes {
		lines = append(lines, fmt.Sprintf("%d: %s", i, FormatNote(n)))
	}
	return strings.Join(lines, "\n"), nil
}

func (a *Assistant) SearchNotesByText(ctx context.Context, query string) (string, error) {
	notes, err := a.notes.SearchNotesByText(ctx, query)
	if err != nil {
		return "", a.fail("search notes", err)
	}

	a.wrote(a.incNoteRead)
	return formatNoteResults(notes), nil
}

func (a *Assistant) SearchNotesByTag(ctx context.Context, tag string) (string, error) {
	notes, err := a.notes.SearchNotesByTag(ctx, strings.TrimSpace(tag))
	if err != nil {
		return "", a.fail("search notes by tag", err)
	}

	a.wrote(a.incNoteRead)
	return formatNoteResults(notes), nil
}

// MatchNotes returns the notes whose text contains query, for the edit flow.
func (a *Assistant) MatchNotes(ctx context.Context, query string) ([]store.Note, error) {
	notes, err := a.notes.SearchNotesByText(ctx, query)
	if err != nil {
		return nil, a.fail("match notes", err)
	}
	a.wrote(a.incNoteRead)
	return notes, nil
}

// SelectNote picks a note by its 1-based number in matches.
func (a *Assistant) SelectNote(matches []store.Note, selection string) (store.Note, error) {
	n, err := parseNumber("selection", selection)
	if err != nil {
		return store.Note{}, a.fail("select note", err)
	}
	if n < 1 || n > len(matches) {
		return store.Note{}, a.fail("select note", ErrInvalidSelection)
	}
	return matches[n-1], nil
}

// EditNote updates the note with id. Blank text or tags keep the current value.
func (a *Assistant) EditNote(ctx context.Context, id uuid.UUID, text, tags string) (string, error) {
	current, err := a.notes.GetNote(ctx, id)
	if err != nil {
		return "", a.fail("edit note", err)
	}
	if text == "" {
		text = current.Text
	}

	if err := a.notes.EditNote(ctx, id, text, ParseTags(tags)); err != nil {
		return "", a.fail("edit note", err)
	}

	a.wrote(a.incNoteWrite)
	a.logger.Info("note updated", "id", id)
	return "Note updated successfully.", nil
}

// EditNoteAt updates the note at a 0-based position. The text is
// overwritten as given; blank tags keep the current tags.
func (a *Assistant) EditNoteAt(ctx context.Context, index, text, tags string) (string, error) {
	i, err := parseNumber("index", index)
	if err != nil {
		return "", a.fail("edit note", err)
	}

	if err := a.notes.EditNoteAt(ctx, i, text, ParseTags(tags)); err != nil {
		return "", a.fail("edit note", err)
	}

	a.wrote(a.incNoteWrite)
	a.logger.Info("note updated", "index", i)
	return "Note updated.", nil
}

func (a *Assistant) DeleteNote(ctx context.Context, index string) (string, error) {
	i, err := parseNumber("index", index)
	if err != nil {
		return "", a.fail("delete note", err)
	}

	if err := a.notes.DeleteNoteAt(ctx, i); err != nil {
		return "", a.fail("delete note", err)
	}

	a.wrote(a.incNoteWrite)
	a.logger.Info("note deleted", "index", i)
	return "Note deleted successfully.", nil
}

func (a *Assistant) UpcomingBirthdays(ctx context.Context, days string) (string, error) {
	n, err := parseNumber("days", days)
	if err != nil {
		return "", a.fail("upcoming birthdays", err)
	}

	contacts, err := a.contacts.UpcomingBirthdays(ctx, n)
	if err != nil {
		return "", a.fail("upcoming birthdays", err)
	}

	a.wrote(a.incContactRead)
	if len(contacts) == 0 {
		return fmt.Sprintf("No birthdays in the next %d days.", n), nil
	}

	today := a.now()
	lines := make([]string, 0, len(contacts))
	for _, c := range contacts {
		lines = append(lines, fmt.Sprintf("%s has a birthday on %s (%s).", c.Name, c.Birthday, birthdayCountdown(c.Birthday, today)))
	}
	return strings.Join(lines, "\n"), nil
}

// Describe turns an operation error into the message shown to the user.
func Describe(err error) string {
	var vErr *store.ValidationError
	var inErr *InputError

	switch {
	case errors.As(err, &vErr):
		switch vErr.Field {
		case "phone":
			return "Invalid phone number format."
		case "birthday":
			return "Invalid birthday format, use YYYY-MM-DD."
		default:
			return fmt.Sprintf("Invalid %s format.", vErr.Field)
		}
	case errors.As(err, &inErr):
		return "Please enter a valid number."
	case errors.Is(err, store.ErrContactNotFound):
		return "Contact not found."
	case errors.Is(err, store.ErrNoteNotFound):
		return "No matching note found."
	case errors.Is(err, store.ErrIndexOutOfRange):
		return "Note index out of range."
	case errors.Is(err, ErrInvalidSelection):
		return "Invalid selection. No changes made."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

// ParseTags splits comma-separated tags, trimming blanks away.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func FormatContact(c store.Contact) string {
	return fmt.Sprintf("Name: %s, Address: %s, Phone: %s, Email: %s, Birthday: %s",
		c.Name, c.Address, c.Phone, c.Email, c.Birthday)
}

func FormatContacts(contacts []store.Contact) string {
	lines := make([]string, 0, len(contacts))
	for _, c := range contacts {
		lines = append(lines, FormatContact(c))
	}
	return strings.Join(lines, "\n")
}

func FormatNote(n store.Note) string {
	return fmt.Sprintf("%s - Tags: %s", n.Text, strings.Join(n.Tags, ", "))
}

func formatNoteResults(notes []store.Note) string {
	if len(notes) == 0 {
		return "No notes found."
	}
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, FormatNote(n))
	}
	return strings.Join(lines, "\n")
}

// FormatMatches numbers notes from 1 for the selection prompt.
func FormatMatches(notes []store.Note) string {
	lines := make([]string, 0, len(notes))
	for i, n := range notes {
		lines = append(lines, fmt.Sprintf("%d: %s", i+1, FormatNote(n)))
	}
	return strings.Join(lines, "\n")
}

func birthdayCountdown(birthday string, today time.Time) string {
	next, err := store.NextBirthday(birthday, today)
	if err != nil {
		return "unknown"
	}
	days := store.DaysUntil(next, today)
	if days == 0 {
		return "today"
	}
	if days == 1 {
		return "tomorrow"
	}
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return humanize.RelTime(next, start, "ago", "from now")
}

func parseNumber(field, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &InputError{Field: field, Value: raw}
	}
	return n, nil
}

func (a *Assistant) fail(op string, err error) error {
	if a.stats != nil {
		a.stats.IncrementFailure()
	}
	a.logger.Debug("operation failed", "op", op, "err", err)
	return err
}

func (a *Assistant) wrote(inc func()) {
	if a.stats != nil {
		inc()
	}
}

func (a *Assistant) incContactRead()  { a.stats.IncrementContactRead() }
func (a *Assistant) incContactWrite() { a.stats.IncrementContactWrite() }
func (a *Assistant) incNoteRead()     { a.stats.IncrementNoteRead() }
func (a *Assistant) incNoteWrite()    { a.stats.IncrementNoteWrite() }
