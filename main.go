package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/brunoscheufler/pim/cli"
	"github.com/brunoscheufler/pim/config"
	"github.com/brunoscheufler/pim/constants"
	"github.com/brunoscheufler/pim/store"
	"github.com/brunoscheufler/pim/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file (default: pim.yaml in the working or user config directory)")
	dataDir := flag.String("data-dir", constants.DefaultDataDir, "Directory holding the contact and note collections")
	backend := flag.String("backend", constants.DefaultBackend, "Storage backend (json, yaml or sqlite)")
	theme := flag.String("theme", constants.DefaultTheme, "Theme for the terminal UI (dark or light)")
	logLevel := flag.String("log-level", constants.DefaultLogLevel, "Log level (debug, info, warn or error)")
	seed := flag.Int("seed", 0, "Fill empty collections with this many generated contacts and notes")
	birthdayDays := flag.Int("birthday-days", constants.DefaultBirthdayDays, "Default window for upcoming birthdays")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	// Flags only win when given explicitly, so file and environment
	// values are not reset to the flag defaults.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data-dir":
			cfg.DataDir = *dataDir
		case "backend":
			cfg.Backend = *backend
		case "theme":
			cfg.Theme = *theme
		case "log-level":
			cfg.LogLevel = *logLevel
		case "seed":
			cfg.Seed = *seed
		case "birthday-days":
			cfg.BirthdayDays = *birthdayDays
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if err := Run(cfg); err != nil {
		log.Fatal(err)
	}
}

// Run loads both collections and blocks in the terminal UI until the user quits.
func Run(cfg *config.Config) error {
	ctx := context.Background()

	contacts, notes, err := store.OpenStores(ctx, cfg.StoreOptions())
	if err != nil {
		return fmt.Errorf("could not open stores: %w", err)
	}
	defer closeStores(contacts, notes)

	tel := telemetry.New(
		telemetry.WithCLIMode(true),
		telemetry.WithLogLevel(cfg.LogLevel),
		telemetry.WithStores(contacts, notes),
	)
	tel.SetupLogging()

	if cfg.Seed > 0 {
		seeder := NewSeeder(contacts, notes, tel, SeedOptions{Contacts: cfg.Seed, Notes: cfg.Seed})
		if _, _, err := seeder.Seed(ctx); err != nil {
			return fmt.Errorf("could not seed stores: %w", err)
		}
	}

	contactCount, _ := contacts.CountContacts(ctx)
	noteCount, _ := notes.CountNotes(ctx)
	tel.Logger.Info("Stores loaded",
		"backend", cfg.Backend,
		"data_dir", cfg.DataDir,
		"contacts", contactCount,
		"notes", noteCount,
	)

	return cli.RunCLI(&cli.AppConfig{
		ContactStore: contacts,
		NoteStore:    notes,
		Telemetry:    tel,
	}, cli.CLIOptions{
		Theme:        cfg.Theme,
		BirthdayDays: cfg.BirthdayDays,
	})
}

func closeStores(contacts store.ContactStore, notes store.NoteStore) {
	if err := contacts.Close(); err != nil {
		log.Printf("could not close contact store: %v", err)
	}
	if err := notes.Close(); err != nil {
		log.Printf("could not close note store: %v", err)
	}
}
