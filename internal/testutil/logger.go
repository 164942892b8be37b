package testutil

import (
	"bytes"
	"log/slog"

	"github.com/preston-bernstein/games-list-service/internal/logging"
)

// NewBufferLogger returns a debug-level text logger writing to the returned buffer.
func NewBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logging.NewLogger(logging.Config{Level: "debug", Format: "text", Output: &buf}), &buf
}
