package process

import (
	"testing"

	"github.com/desertwitch/rawos/internal/args"
	"github.com/desertwitch/rawos/internal/kernel/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupExit(t *testing.T) *mocks.Kernel {
	t.Helper()

	k := mocks.NewKernel(t)

	hooksMu.Lock()
	hooks = nil
	hooksRan = false
	hooksMu.Unlock()

	previous := exitKernel
	exitKernel = k

	t.Cleanup(func() {
		exitKernel = previous
		args.Cleanup()
	})

	return k
}

// TestExit_Success_HooksInReverse tests hooks run last-registered first, before the exit call.
func TestExit_Success_HooksInReverse(t *testing.T) {
	k := setupExit(t)

	var order []int
	RegisterCleanup(func() { order = append(order, 1) })
	RegisterCleanup(func() { order = append(order, 2) })
	RegisterCleanup(func() { order = append(order, 3) })

	args.InitStrings([]string{"rawos", "ls"})

	k.On("ExitGroup", 3).Run(func(_ mock.Arguments) {
		assert.Equal(t, []int{3, 2, 1}, order)
		assert.Equal(t, 0, args.All().Len())
	}).Once()

	assert.PanicsWithValue(t, "unreachable", func() { Exit(3) })
}

// TestExit_Success_HooksOnce tests a second exit does not run the hooks again.
func TestExit_Success_HooksOnce(t *testing.T) {
	k := setupExit(t)

	calls := 0
	RegisterCleanup(func() { calls++ })

	k.On("ExitGroup", 0).Return().Twice()

	assert.Panics(t, func() { Exit(0) })
	assert.Panics(t, func() { Exit(0) })

	assert.Equal(t, 1, calls)
}
