package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTextHandler(buf *bytes.Buffer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})
}

// TestLogRouter_Success_FanOut tests records reach every enabled handler.
func TestLogRouter_Success_FanOut(t *testing.T) {
	t.Parallel()

	var debug, warn bytes.Buffer

	router := newLogRouter()
	router.AddHandler("debug", newTextHandler(&debug, slog.LevelDebug))
	router.AddHandler("warn", newTextHandler(&warn, slog.LevelWarn))

	logger := slog.New(router)
	logger.Debug("refilling directory buffer")
	logger.Warn("short write")

	assert.Contains(t, debug.String(), "refilling directory buffer")
	assert.Contains(t, debug.String(), "short write")
	assert.NotContains(t, warn.String(), "refilling directory buffer")
	assert.Contains(t, warn.String(), "short write")
}

// TestLogRouter_Success_Derived tests derived loggers follow handler changes.
func TestLogRouter_Success_Derived(t *testing.T) {
	t.Parallel()

	var first, second bytes.Buffer

	router := newLogRouter()
	router.AddHandler("out", newTextHandler(&first, slog.LevelInfo))

	logger := slog.New(router).With("fd", 3).WithGroup("dir")
	logger.Info("opened", "path", "/srv")

	router.RemoveHandler("out")
	router.AddHandler("out", newTextHandler(&second, slog.LevelInfo))
	logger.Info("closed", "path", "/srv")

	assert.Contains(t, first.String(), "fd=3")
	assert.Contains(t, first.String(), "dir.path=/srv")
	assert.NotContains(t, first.String(), "closed")

	assert.Contains(t, second.String(), "msg=closed")
	assert.Contains(t, second.String(), "fd=3")
	assert.Contains(t, second.String(), "dir.path=/srv")
}

// TestLogRouter_Success_Empty tests a router without handlers drops records.
func TestLogRouter_Success_Empty(t *testing.T) {
	t.Parallel()

	router := newLogRouter()

	assert.False(t, router.Enabled(context.Background(), slog.LevelError))
	require.NoError(t, router.Handle(context.Background(), slog.Record{}))
	assert.Same(t, router, router.WithGroup(""))
}

// TestTerminalHandler_Success_Level tests the tint handler honors the level.
func TestTerminalHandler_Success_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	h := newTerminalHandler(&buf, slog.LevelWarn)
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))

	slog.New(h).Warn("disk nearly full", "free", "1 GiB")
	assert.Contains(t, buf.String(), "disk nearly full")
}
