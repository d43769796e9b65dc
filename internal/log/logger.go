package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cosmosops/analyticalctl/internal/util"
	"github.com/google/uuid"
)

// Options describe where and how verbosely a run logs.
type Options struct {
	// Level is one of trace, debug, info, warn, error
	Level string
	// FilePath, when set, receives every record as JSON. Errors are still
	// mirrored to ErrOut in the friendly format.
	FilePath string
	ErrOut   io.Writer
	// RunID defaults to a random UUID
	RunID string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the run logger. The returned closer releases the log file, if any.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	errOut := opts.ErrOut
	if errOut == nil {
		errOut = os.Stderr
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       ConfigLevelStringToSlogLevel(opts.Level),
		ReplaceAttr: replaceLevelNames,
	}

	if opts.FilePath == "" {
		handler := slog.NewTextHandler(errOut, handlerOpts)
		return slog.New(handler).With(RunIDKey, runID), nopCloser{}, nil
	}

	if err := util.InitDir(opts.FilePath, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(os.ExpandEnv(opts.FilePath), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := NewDualHandler(slog.NewJSONHandler(f, handlerOpts), NewFriendlyErrorHandler(errOut))
	return slog.New(handler).With(RunIDKey, runID), f, nil
}

func replaceLevelNames(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}
