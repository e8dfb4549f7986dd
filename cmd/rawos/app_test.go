package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"strings"
	"testing"

	"github.com/desertwitch/rawos/internal/args"
	"github.com/desertwitch/rawos/internal/configuration"
	"github.com/desertwitch/rawos/internal/filesystem"
	"github.com/desertwitch/rawos/internal/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
	"gotest.tools/v3/fs"
)

type testApp struct {
	*App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestApp(t *testing.T, cfg *configuration.Config) *testApp {
	t.Helper()

	if cfg == nil {
		cfg = configuration.Defaults()
	}

	var stdout, stderr bytes.Buffer
	app := NewApp(cfg, filesystem.NewHandler(kernel.Default), newLogRouter(), &stdout, &stderr)

	return &testApp{App: app, stdout: &stdout, stderr: &stderr}
}

func (ta *testApp) run(t *testing.T, argv ...string) int {
	t.Helper()

	return ta.Run(t.Context(), argv)
}

// TestRun_Fail_Usage tests usage errors exit with code 2.
func TestRun_Fail_Usage(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	assert.Equal(t, exitUsage, app.run(t))
	assert.Contains(t, app.stderr.String(), "commands:")

	assert.Equal(t, exitUsage, app.run(t, "frobnicate"))
	assert.Equal(t, exitUsage, app.run(t, "cp", "only-one"))
	assert.Equal(t, exitUsage, app.run(t, "ls", "-nonsense"))
	assert.Equal(t, exitUsage, app.run(t, "chmod", "999", "x"))
	assert.Equal(t, exitOK, app.run(t, "ls", "-h"))
}

// TestRun_Success_Ls tests names are listed sorted without dot entries.
func TestRun_Success_Ls(t *testing.T) {
	t.Parallel()

	dir := fs.NewDir(t, "app",
		fs.WithFile("b", ""),
		fs.WithFile("a", ""),
		fs.WithDir("c"),
	)
	app := newTestApp(t, nil)

	require.Equal(t, exitOK, app.run(t, "ls", dir.Path()))
	assert.Equal(t, "a\nb\nc\n", app.stdout.String())
}

// TestRun_Success_LsLong tests the long format shows sizes and link targets.
func TestRun_Success_LsLong(t *testing.T) {
	t.Parallel()

	dir := fs.NewDir(t, "app",
		fs.WithFile("data", strings.Repeat("x", 2048)),
		fs.WithSymlink("absolute", "data"),
	)
	app := newTestApp(t, nil)
	require.NoError(t, app.fsHandler.Symlink("data", dir.Join("relative")))

	require.Equal(t, exitOK, app.run(t, "ls", "-l", dir.Path()))

	out := app.stdout.String()
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "relative -> data\n")
	assert.Contains(t, out, "absolute -> "+dir.Join("data")+"\n")
}

// TestRun_Fail_LsMissing tests a missing directory exits with code 1.
func TestRun_Fail_LsMissing(t *testing.T) {
	t.Parallel()

	dir := fs.NewDir(t, "app")
	app := newTestApp(t, nil)

	assert.Equal(t, exitError, app.run(t, "ls", dir.Join("missing")))
}

// TestRun_Success_Cat tests file contents are written to stdout in order.
func TestRun_Success_Cat(t *testing.T) {
	t.Parallel()

	dir := fs.NewDir(t, "app",
		fs.WithFile("one", "first\n"),
		fs.WithFile("two", "second\n"),
	)
	app := newTestApp(t, nil)

	require.Equal(t, exitOK, app.run(t, "cat", dir.Join("one"), dir.Join("two")))
	assert.Equal(t, "first\nsecond\n", app.stdout.String())
}

// TestRun_Success_Cp tests both the plain and the verified copy.
func TestRun_Success_Cp(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("copy me ", 1000)
	dir := fs.NewDir(t, "app", fs.WithFile("src", content, fs.WithMode(0o640)))
	app := newTestApp(t, nil)

	require.Equal(t, exitOK, app.run(t, "cp", dir.Join("src"), dir.Join("plain")))
	require.Equal(t, exitOK, app.run(t, "cp", "-verify", dir.Join("src"), dir.Join("verified")))

	for _, name := range []string{"plain", "verified"} {
		got, err := os.ReadFile(dir.Join(name))
		require.NoError(t, err)
		assert.Equal(t, content, string(got))

		info, err := os.Stat(dir.Join(name))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	}
}

// TestRun_Success_CpVerifyConfig tests the configuration turns on verified copies.
func TestRun_Success_CpVerifyConfig(t *testing.T) {
	t.Parallel()

	dir := fs.NewDir(t, "app", fs.WithFile("src", "abc"))
	cfg := configuration.Defaults()
	cfg.VerifyCopy = true
	app := newTestApp(t, cfg)

	require.Equal(t, exitOK, app.run(t, "cp", dir.Join("src"), dir.Join("dst")))
	assert.Equal(t, exitError, app.run(t, "cp", dir.Path(), dir.Join("dir-copy")))

	got, err := os.ReadFile(dir.Join("dst"))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

// TestRun_Success_Stat tests the stat output with and without following links.
func TestRun_Success_Stat(t *testing.T) {
	t.Parallel()

	dir := fs.NewDir(t, "app",
		fs.WithFile("data", "12345"),
		fs.WithSymlink("link", "data"),
	)
	app := newTestApp(t, nil)

	require.Equal(t, exitOK, app.run(t, "stat", dir.Join("link")))
	assert.Contains(t, app.stdout.String(), "Type: symlink")

	app.stdout.Reset()
	require.Equal(t, exitOK, app.run(t, "stat", "-L", dir.Join("link")))
	assert.Contains(t, app.stdout.String(), "Size: 5 (5 B)")
	assert.Contains(t, app.stdout.String(), "Type: file")
}

// TestRun_Success_Mkdir tests modes, parents and the configured default mode.
func TestRun_Success_Mkdir(t *testing.T) {
	t.Parallel()

	dir := fs.NewDir(t, "app")
	cfg := configuration.Defaults()
	cfg.DirMode = 0o750
	app := newTestApp(t, cfg)

	require.Equal(t, exitOK, app.run(t, "mkdir", dir.Join("configured")))
	require.Equal(t, exitOK, app.run(t, "mkdir", "-m", "0700", dir.Join("explicit")))
	require.Equal(t, exitOK, app.run(t, "mkdir", "-p", dir.Join("x", "y", "z")))
	require.Equal(t, exitOK, app.run(t, "mkdir", "-p", dir.Join("x", "y")))
	assert.Equal(t, exitError, app.run(t, "mkdir", dir.Join("explicit")))
	assert.Equal(t, exitUsage, app.run(t, "mkdir", "-m", "abc", dir.Join("bad")))

	info, err := os.Stat(dir.Join("configured"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm()&0o750)
	assert.Zero(t, info.Mode().Perm()&0o007)

	info, err = os.Stat(dir.Join("explicit"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

	info, err = os.Stat(dir.Join("x", "y", "z"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestRun_Success_Modify tests the mutating commands working together.
func TestRun_Success_Modify(t *testing.T) {
	t.Parallel()

	dir := fs.NewDir(t, "app",
		fs.WithFile("file", "data"),
		fs.WithDir("empty"),
	)
	app := newTestApp(t, nil)

	require.Equal(t, exitOK, app.run(t, "chmod", "600", dir.Join("file")))
	info, err := os.Stat(dir.Join("file"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.Equal(t, exitOK, app.run(t, "ln", dir.Join("file"), dir.Join("hard")))
	require.Equal(t, exitOK, app.run(t, "ln", "-s", "file", dir.Join("soft")))
	require.Equal(t, exitOK, app.run(t, "readlink", dir.Join("soft")))
	assert.Equal(t, "file\n", app.stdout.String())

	require.Equal(t, exitOK, app.run(t, "mv", dir.Join("hard"), dir.Join("moved")))
	require.Equal(t, exitOK, app.run(t, "rm", dir.Join("moved"), dir.Join("soft")))
	require.Equal(t, exitOK, app.run(t, "rmdir", dir.Join("empty")))
	assert.Equal(t, exitError, app.run(t, "rm", dir.Join("moved")))

	entries, err := os.ReadDir(dir.Path())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "file", entries[0].Name())
}

// TestRun_Success_Sum tests digests are printed in argument order.
func TestRun_Success_Sum(t *testing.T) {
	t.Parallel()

	names := []string{"e", "d", "c", "b", "a"}
	ops := make([]fs.PathOp, 0, len(names))
	for _, name := range names {
		ops = append(ops, fs.WithFile(name, strings.Repeat(name, 100)))
	}
	dir := fs.NewDir(t, "app", ops...)
	app := newTestApp(t, nil)

	argv := []string{"sum"}
	var want strings.Builder
	for _, name := range names {
		argv = append(argv, dir.Join(name))
		sum := blake3.Sum256([]byte(strings.Repeat(name, 100)))
		want.WriteString(hex.EncodeToString(sum[:]) + "  " + dir.Join(name) + "\n")
	}

	require.Equal(t, exitOK, app.run(t, argv...))
	assert.Equal(t, want.String(), app.stdout.String())

	assert.Equal(t, exitError, app.run(t, "sum", dir.Join("missing")))
}

// TestRun_Success_Tree tests the walk output and its summary line.
func TestRun_Success_Tree(t *testing.T) {
	t.Parallel()

	dir := fs.NewDir(t, "app",
		fs.WithFile("top", ""),
		fs.WithDir("sub", fs.WithFile("inner", "")),
	)
	app := newTestApp(t, nil)

	require.Equal(t, exitOK, app.run(t, "tree", dir.Path()))

	out := app.stdout.String()
	assert.Contains(t, out, dir.Join("sub")+"/\n")
	assert.Contains(t, out, dir.Join("sub", "inner")+"\n")
	assert.True(t, strings.HasSuffix(out, "\n2 directories, 2 files\n"))
}

// TestRun_Success_Browse tests the browser is started on the given root.
func TestRun_Success_Browse(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	var gotRoot string
	app.browserLaunch = func(ctx context.Context, cancel context.CancelFunc, root string) error {
		gotRoot = root
		assert.NoError(t, ctx.Err())
		cancel()
		assert.Error(t, ctx.Err())

		return nil
	}

	require.Equal(t, exitOK, app.run(t, "browse", "/srv"))
	assert.Equal(t, "/srv", gotRoot)
}

// TestRun_Fail_BrowseDisabled tests the browser respects the configuration.
func TestRun_Fail_BrowseDisabled(t *testing.T) {
	t.Parallel()

	cfg := configuration.Defaults()
	cfg.UI = false
	app := newTestApp(t, cfg)

	app.browserLaunch = func(context.Context, context.CancelFunc, string) error {
		t.Error("browser launched while disabled")

		return nil
	}

	assert.Equal(t, exitError, app.run(t, "browse"))
}

// TestRun_Success_Args tests the captured arguments are printed with indexes.
//
//nolint:paralleltest
func TestRun_Success_Args(t *testing.T) {
	args.InitStrings([]string{"rawos", "args", "with space"})
	t.Cleanup(args.Cleanup)

	app := newTestApp(t, nil)

	require.Equal(t, exitOK, app.run(t, "args"))
	assert.Equal(t, "0: \"rawos\"\n1: \"args\"\n2: \"with space\"\n", app.stdout.String())
}
