// Package process terminates the process after running the registered
// process-wide cleanup hooks.
package process

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/desertwitch/rawos/internal/args"
	"github.com/desertwitch/rawos/internal/kernel"
)

type exitProvider interface {
	ExitGroup(code int)
}

//nolint:gochecknoglobals
var (
	exitKernel exitProvider = kernel.Default

	hooksMu  sync.Mutex
	hooks    []func()
	hooksRan bool
)

// RegisterCleanup adds fn to the hooks [Exit] runs. Hooks run in reverse
// order of registration.
func RegisterCleanup(fn func()) {
	hooksMu.Lock()
	defer hooksMu.Unlock()

	hooks = append(hooks, fn)
}

func runCleanup() int {
	hooksMu.Lock()
	if hooksRan {
		hooksMu.Unlock()

		return 0
	}
	hooksRan = true
	pending := slices.Clone(hooks)
	hooks = nil
	hooksMu.Unlock()

	for _, fn := range slices.Backward(pending) {
		fn()
	}

	args.Cleanup()

	return len(pending)
}

// Exit runs the cleanup hooks, releases the captured arguments and ends the
// process with code. It does not return.
func Exit(code int) {
	n := runCleanup()

	slog.Debug("Exiting process",
		"code", code,
		"hooks", n,
	)

	exitKernel.ExitGroup(code)

	panic("unreachable")
}
