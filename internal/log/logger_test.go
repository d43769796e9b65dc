package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigLevelStringToSlogLevel(t *testing.T) {
	require.Equal(t, LevelTrace, ConfigLevelStringToSlogLevel("trace"))
	require.Equal(t, slog.LevelWarn, ConfigLevelStringToSlogLevel("warn"))
	require.Equal(t, slog.LevelError, ConfigLevelStringToSlogLevel("bogus"))
}

func TestNewLogsToErrOutAtLevel(t *testing.T) {
	var errOut bytes.Buffer
	logger, closer, err := New(Options{Level: "warn", ErrOut: &errOut, RunID: "run-1"})
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("visible", "database", "db-a")

	out := errOut.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "visible")
	require.Contains(t, out, "run_id=run-1")
	require.Contains(t, out, "database=db-a")
}

func TestNewWritesFileAndMirrorsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "analyticalctl.log")

	var errOut bytes.Buffer
	logger, closer, err := New(Options{Level: "trace", FilePath: path, ErrOut: &errOut, RunID: "run-2"})
	require.NoError(t, err)

	logger.Log(context.Background(), LevelTrace, "tracing")
	logger.Error("disable failed", "error", errors.New("boom"), "container", "orders")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), `"level":"TRACE"`)
	require.Contains(t, string(content), `"run_id":"run-2"`)
	require.Contains(t, string(content), "disable failed")

	require.Equal(t, "Error: disable failed\n  container: orders\n", errOut.String())
}

func TestFriendlyHandlerFallsBackToErrorAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewFriendlyErrorHandler(&buf))

	logger.Error("", "error", "exit status 1", "suggestion", "run az login")

	require.Equal(t, "Error: exit status 1\n  suggestion: run az login\n", buf.String())
}

func TestFromContextDefaultsToDiscard(t *testing.T) {
	require.NotNil(t, FromContext(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey, logger)
	require.Same(t, logger, FromContext(ctx))
}
