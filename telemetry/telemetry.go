package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/brunoscheufler/pim/constants"
	"github.com/brunoscheufler/pim/store"
	"github.com/lmittmann/tint"
)

// Telemetry provides centralized logging and stats collection
type Telemetry struct {
	Logger         *slog.Logger
	LogCapture     *LogCapture
	StatsCollector *StatsCollector

	logLevel slog.Level
	cliMode  bool
	output   io.Writer
}

// Option configures a Telemetry instance
type Option func(*Telemetry)

// WithCLIMode keeps log output inside the in-memory capture so it does not
// draw over the terminal UI.
func WithCLIMode(enabled bool) Option {
	return func(t *Telemetry) {
		t.cliMode = enabled
	}
}

// WithLogLevel sets the minimum level. Unknown names keep the default.
func WithLogLevel(level string) Option {
	return func(t *Telemetry) {
		if l, err := ParseLevel(level); err == nil {
			t.logLevel = l
		}
	}
}

// WithOutput replaces stderr as the console log destination.
func WithOutput(w io.Writer) Option {
	return func(t *Telemetry) {
		t.output = w
	}
}

// WithStores lets the stats collector report collection sizes.
func WithStores(contacts store.ContactStore, notes store.NoteStore) Option {
	return func(t *Telemetry) {
		t.StatsCollector.contactStore = contacts
		t.StatsCollector.noteStore = notes
	}
}

// New creates a new telemetry instance
func New(opts ...Option) *Telemetry {
	t := &Telemetry{
		LogCapture:     NewLogCapture(constants.DefaultLogBufferSize),
		StatsCollector: NewStatsCollector(nil, nil),
		logLevel:       slog.LevelDebug,
		output:         os.Stderr,
	}

	for _, opt := range opts {
		opt(t)
	}

	if !t.cliMode && t.output != nil {
		t.LogCapture.AddWriter(t.output)
	}

	t.Logger = slog.New(tint.NewHandler(t.LogCapture, &tint.Options{
		Level:      t.logLevel,
		TimeFormat: time.TimeOnly,
		NoColor:    t.cliMode,
	}))

	return t
}

func (t *Telemetry) GetLogger() *slog.Logger {
	return t.Logger
}

// SetupLogging makes the telemetry logger the process default
func (t *Telemetry) SetupLogging() {
	slog.SetDefault(t.Logger)
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}
