package telemetry

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTelemetry_Options(t *testing.T) {
	// Test default behavior
	var out bytes.Buffer
	defaultTelemetry := New(WithOutput(&out))

	require.NotNil(t, defaultTelemetry.Logger, "Logger should be created")
	require.NotNil(t, defaultTelemetry.LogCapture, "LogCapture should be created")
	require.NotNil(t, defaultTelemetry.StatsCollector, "StatsCollector should be created")
	require.Equal(t, slog.LevelDebug, defaultTelemetry.logLevel, "Default log level should be debug")

	defaultTelemetry.Logger.Info("contact added", "name", "alice")
	require.Contains(t, out.String(), "contact added", "console output should receive logs")
	require.Equal(t, 1, defaultTelemetry.LogCapture.Len())

	// Test with CLI mode enabled
	out.Reset()
	cliTelemetry := New(WithCLIMode(true), WithOutput(&out))
	cliTelemetry.Logger.Info("captured only")
	require.Empty(t, out.String(), "CLI mode must not write to the console")
	require.Equal(t, 1, cliTelemetry.LogCapture.Len())

	// Test with custom log level
	infoTelemetry := New(WithLogLevel("info"), WithOutput(&out))
	require.Equal(t, slog.LevelInfo, infoTelemetry.logLevel, "Log level should be info")
	infoTelemetry.Logger.Debug("dropped")
	require.Zero(t, infoTelemetry.LogCapture.Len())

	// Unknown level keeps the default
	badTelemetry := New(WithLogLevel("verbose"), WithOutput(&out))
	require.Equal(t, slog.LevelDebug, badTelemetry.logLevel)

	// Test with multiple options
	combinedTelemetry := New(
		WithCLIMode(true),
		WithLogLevel("warn"),
	)
	require.Equal(t, slog.LevelWarn, combinedTelemetry.logLevel, "Log level should be warn")
	require.NotNil(t, combinedTelemetry.GetLogger(), "Combined Logger should be created")
}

func TestParseLevel(t *testing.T) {
	for input, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLevel(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}

	_, err := ParseLevel("trace")
	require.Error(t, err)
}

func TestLogCapture(t *testing.T) {
	lc := NewLogCapture(3)

	var seen []string
	lc.SetLogCallback(func(entry LogEntry) { seen = append(seen, entry.Message) })

	for _, msg := range []string{"one\n", "two\n", "three\n", "four\n"} {
		n, err := lc.Write([]byte(msg))
		require.NoError(t, err)
		require.Equal(t, len(msg), n)
	}

	require.Equal(t, []string{"one", "two", "three", "four"}, seen)
	require.Equal(t, 3, lc.Len(), "oldest entries are dropped")

	recent := lc.GetRecentLogs(2)
	require.Len(t, recent, 2)
	require.Equal(t, "three", recent[0].Message)
	require.Equal(t, "four", recent[1].Message)

	all := lc.GetRecentLogs(10)
	require.Len(t, all, 3)
	require.Equal(t, "two", all[0].Message)
}
