package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDualHandlerMirrorsErrorsToSecondary(t *testing.T) {
	var primaryBuf bytes.Buffer
	var secondaryBuf bytes.Buffer

	primary := slog.NewTextHandler(&primaryBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	secondary := slog.NewTextHandler(&secondaryBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(NewDualHandler(primary, secondary)).With("database", "db-a")

	logger.Error("boom", slog.String("container", "orders"))
	logger.Info("still going")

	require.Contains(t, primaryBuf.String(), "boom")
	require.Contains(t, primaryBuf.String(), "still going")
	require.Contains(t, secondaryBuf.String(), "boom")
	require.Contains(t, secondaryBuf.String(), "database=db-a")
	require.NotContains(t, secondaryBuf.String(), "still going")
}

func TestDualHandlerWithoutSecondary(t *testing.T) {
	var primaryBuf bytes.Buffer
	primary := slog.NewTextHandler(&primaryBuf, &slog.HandlerOptions{Level: slog.LevelError})
	handler := NewDualHandler(primary, nil)
	logger := slog.New(handler)

	logger.Warn("quiet")
	logger.Error("loud")

	require.NotContains(t, primaryBuf.String(), "quiet")
	require.Contains(t, primaryBuf.String(), "loud")
}
