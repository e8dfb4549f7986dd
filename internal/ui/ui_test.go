package ui

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertwitch/rawos/internal/filesystem"
	"github.com/desertwitch/rawos/internal/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

func newBrowseDir(t *testing.T) *fs.Dir {
	t.Helper()

	return fs.NewDir(t, "browse",
		fs.WithFile("c", "ccc"),
		fs.WithFile("a.txt", "hello"),
		fs.WithDir("b", fs.WithFile("inner", "x")),
	)
}

// findDirLoaded runs cmd and any batched commands until a listing shows up.
func findDirLoaded(cmd tea.Cmd) (DirLoadedMsg, bool) {
	if cmd == nil {
		return DirLoadedMsg{}, false
	}

	switch msg := cmd().(type) {
	case DirLoadedMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if loaded, ok := findDirLoaded(c); ok {
				return loaded, true
			}
		}
	}

	return DirLoadedMsg{}, false
}

func update(t *testing.T, m TeaModel, msg tea.Msg) (TeaModel, tea.Cmd) {
	t.Helper()

	updated, cmd := m.Update(msg)
	model, ok := updated.(TeaModel)
	require.True(t, ok)

	return model, cmd
}

// TestLoadDir_Success_Sorted tests directories come first and dot entries are hidden.
func TestLoadDir_Success_Sorted(t *testing.T) {
	t.Parallel()

	dir := newBrowseDir(t)

	msg, ok := loadDir(filesystem.NewHandler(kernel.Default), dir.Path())().(DirLoadedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)

	names := make([]string, len(msg.Entries))
	for i, e := range msg.Entries {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"b", "a.txt", "c"}, names)
}

// TestLoadDir_Fail_Missing tests a listing error is carried in the message.
func TestLoadDir_Fail_Missing(t *testing.T) {
	t.Parallel()

	dir := newBrowseDir(t)

	msg, ok := loadDir(filesystem.NewHandler(kernel.Default), dir.Join("nope"))().(DirLoadedMsg)
	require.True(t, ok)
	require.Error(t, msg.Err)
}

// TestTeaModel_Success_Navigation tests selecting, descending and going back up.
func TestTeaModel_Success_Navigation(t *testing.T) {
	t.Parallel()

	dir := newBrowseDir(t)
	handler := &Handler{fs: filesystem.NewHandler(kernel.Default)}

	m := NewTeaModel(handler, dir.Path(), func() {})
	assert.Equal(t, "Loading the browser...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 50})
	assert.True(t, handler.Ready.Load())

	loaded, ok := findDirLoaded(loadDir(handler.fs, dir.Path()))
	require.True(t, ok)
	m, _ = update(t, m, loaded)

	view := m.View()
	assert.Contains(t, view, "b/")
	assert.Contains(t, view, "a.txt")
	assert.Contains(t, view, "Type: directory")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Contains(t, m.View(), "Size: 5 B")
	assert.Equal(t, uint64(8), m.totalSize)
	assert.InDelta(t, 5.0/8.0, m.selectedShare(), 1e-9)

	// Files are not entered.
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	_, ok = findDirLoaded(cmd)
	assert.False(t, ok)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	loaded, ok = findDirLoaded(cmd)
	require.True(t, ok)
	assert.Equal(t, dir.Join("b"), loaded.Path)

	m, _ = update(t, m, loaded)
	assert.Contains(t, m.View(), "inner")

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	loaded, ok = findDirLoaded(cmd)
	require.True(t, ok)
	assert.Equal(t, dir.Path(), loaded.Path)
}

// TestTeaUI is an integration test for the browser program.
func TestTeaUI(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var in bytes.Buffer

	dir := newBrowseDir(t)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()

	handler := NewHandler(ctx, cancel, filesystem.NewHandler(kernel.Default), dir.Path(),
		tea.WithInput(&in), tea.WithOutput(&buf))

	go func() {
		handler.Send(tea.WindowSizeMsg{Width: 200, Height: 60})

		for !handler.Ready.Load() {
			if handler.Failed.Load() {
				return
			}
			time.Sleep(time.Millisecond)
		}

		handler.Send(LogMsg("log1"))
		_, _ = handler.LogWriter.Write([]byte("log2"))

		for range 150 {
			_, _ = handler.LogWriter.Write([]byte("fast logs\n"))
		}

		handler.Send(tea.KeyMsg{Type: tea.KeyDown})
		time.Sleep(time.Second)
		handler.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	}()

	require.NoError(t, handler.Launch())
	require.NotZero(t, buf.Len(), "browser generated no output at all")

	out := buf.String()
	assert.Contains(t, out, "log1")
	assert.Contains(t, out, "log2")
	assert.Contains(t, out, "a.txt")
}

// TestTeaUI_Ctrl_C tests ctrl+c cancels the upstream context.
func TestTeaUI_Ctrl_C(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var in bytes.Buffer

	dir := newBrowseDir(t)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()

	handler := NewHandler(ctx, cancel, filesystem.NewHandler(kernel.Default), dir.Path(),
		tea.WithInput(&in), tea.WithOutput(&buf))

	go func() {
		handler.Send(tea.WindowSizeMsg{Width: 120, Height: 40})
		handler.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	}()

	err := handler.Launch()
	require.ErrorIs(t, err, context.Canceled)
	assert.Error(t, ctx.Err())
}
