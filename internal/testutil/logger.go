package testutil

import (
	"bytes"
	"io"
	"log/slog"
)

// NopLogger returns a logger that drops everything.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// CaptureLogger returns a debug-level logger writing JSON lines into the
// returned buffer, for asserting on diagnostics.
func CaptureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), buf
}
