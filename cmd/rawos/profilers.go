package main

import (
	"context"
	"io"
	"log/slog"
	"runtime/pprof"
)

type profileFileProvider interface {
	Create(path string) (io.WriteCloser, error)
}

// CPUProfiler records a CPU profile from its creation until Stop.
//
//nolint:containedctx
type CPUProfiler struct {
	ctx      context.Context
	cancel   context.CancelFunc
	doneChan chan struct{}
}

// NewCPUProfiler starts a CPU profile written to path and returns once it
// runs. An empty path profiles nothing.
func NewCPUProfiler(ctx context.Context, files profileFileProvider, path string) *CPUProfiler {
	cprof := &CPUProfiler{}
	cprof.ctx, cprof.cancel = context.WithCancel(ctx)
	cprof.doneChan = make(chan struct{})

	started := make(chan struct{})
	go cprof.profile(files, path, started)
	<-started

	return cprof
}

func (cprof *CPUProfiler) profile(files profileFileProvider, path string, started chan<- struct{}) {
	defer close(cprof.doneChan)

	if path == "" {
		close(started)

		return
	}

	f, err := files.Create(path)
	if err != nil {
		slog.Error("Could not create cpu profile", "path", path, "err", err)
		close(started)

		return
	}
	defer f.Close()

	if err := pprof.StartCPUProfile(f); err != nil {
		slog.Error("Could not start cpu profile", "err", err)
		close(started)

		return
	}
	defer pprof.StopCPUProfile()

	close(started)
	<-cprof.ctx.Done()
}

// Stop ends the profile and waits until it is written.
func (cprof *CPUProfiler) Stop() {
	cprof.cancel()
	<-cprof.doneChan
}

// AllocProfiler writes an allocation profile when it is stopped.
//
//nolint:containedctx
type AllocProfiler struct {
	ctx      context.Context
	cancel   context.CancelFunc
	doneChan chan struct{}
}

// NewAllocProfiler returns a profiler writing the allocation profile to path
// when stopped. An empty path profiles nothing.
func NewAllocProfiler(ctx context.Context, files profileFileProvider, path string) *AllocProfiler {
	aprof := &AllocProfiler{}
	aprof.ctx, aprof.cancel = context.WithCancel(ctx)
	aprof.doneChan = make(chan struct{})

	go aprof.profile(files, path)

	return aprof
}

func (aprof *AllocProfiler) profile(files profileFileProvider, path string) {
	defer close(aprof.doneChan)

	if path == "" {
		return
	}

	<-aprof.ctx.Done()

	f, err := files.Create(path)
	if err != nil {
		slog.Error("Could not create allocs profile", "path", path, "err", err)

		return
	}
	defer f.Close()

	if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
		slog.Error("Could not write allocs profile", "err", err)
	}
}

// Stop writes the profile and waits until it is done.
func (aprof *AllocProfiler) Stop() {
	aprof.cancel()
	<-aprof.doneChan
}
