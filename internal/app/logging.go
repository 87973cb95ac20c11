package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/five82/coloringbook/internal/logtail"
)

const logRingSize = 2000

// setupLogging writes slog text records to the log file and to an in-memory
// ring for the Logs view. The ring is seeded with the end of the previous
// session's file. When the file cannot be opened, logging continues to the
// ring alone.
func setupLogging(path string, level slog.Level) (*slog.Logger, *logtail.Ring, func()) {
	ring := logtail.NewRing(logRingSize)
	if previous, err := logtail.Read(path, logRingSize/4); err == nil {
		ring.Seed(previous)
	}

	var out io.Writer = ring
	closer := func() {}
	file, err := openLogFile(path)
	if err == nil {
		out = io.MultiWriter(file, ring)
		closer = func() { _ = file.Close() }
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if err != nil {
		logger.Warn("log file unavailable, logging to memory only", "path", path, "error", err)
	}
	return logger, ring, closer
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}
