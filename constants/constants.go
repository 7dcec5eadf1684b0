package constants

import "time"

// Application-wide constants
const (
	AppName = "Personal Assistant"

	// Storage configuration
	DefaultDataDir  = "data"
	DefaultBackend  = "json"
	DefaultDatabase = "pim"

	// Front end configuration
	DefaultTheme        = "dark"
	DefaultBirthdayDays = 7

	// Telemetry configuration
	DefaultLogLevel      = "info"
	DefaultLogBufferSize = 1000
	DefaultStatsInterval = 2 * time.Second

	// Seeding
	MaxSeedRecords = 500
)

// Menu options, numbered as presented to the user
const (
	OptionAddContact = iota + 1
	OptionSearchContacts
	OptionEditContact
	OptionDeleteContact
	OptionAddNote
	OptionSearchNotesByText
	OptionSearchNotesByTag
	OptionEditNote
	OptionDeleteNote
	OptionUpcomingBirthdays
)
