package cli

import (
	"time"

	"github.com/brunoscheufler/pim/store"
	"github.com/brunoscheufler/pim/telemetry"
)

// AppConfig groups common application dependencies to reduce parameter lists
type AppConfig struct {
	ContactStore store.ContactStore
	NoteStore    store.NoteStore
	Telemetry    *telemetry.Telemetry
	// Now overrides the clock used for birthday countdowns.
	Now func() time.Time
}

type CLIOptions struct {
	Theme string
	// BirthdayDays prefills the upcoming birthdays form.
	BirthdayDays int
}

// RunCLI starts the terminal UI and blocks until the user quits.
func RunCLI(appConfig *AppConfig, options CLIOptions) error {
	cliApp := NewCLIApp(appConfig, options)
	cliApp.Setup()

	return cliApp.Start()
}
