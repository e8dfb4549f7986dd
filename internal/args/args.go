// Package args keeps a process-wide copy of the command line arguments.
//
// [Init] and [Cleanup] must each be called from a single goroutine while
// nothing else reads the arguments; [All] may then be called any number of
// times in between. None of this is synchronized.
package args

import (
	"iter"
	"slices"
	"unsafe"
)

//nolint:gochecknoglobals
var store [][]byte

// Init copies argc NUL-terminated arguments from the C-style array argv.
// Calling it again replaces the previously captured arguments.
func Init(argc int, argv **byte) {
	if argc <= 0 || argv == nil {
		store = nil

		return
	}

	ptrs := unsafe.Slice(argv, argc)
	captured := make([][]byte, 0, argc)

	for _, p := range ptrs {
		if p == nil {
			break
		}

		n := 0
		for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
			n++
		}

		captured = append(captured, slices.Clone(unsafe.Slice(p, n)))
	}

	store = captured
}

// InitStrings captures values as if they had been passed to [Init]. A value
// with an interior NUL byte is cut short there, as a C string would be.
func InitStrings(values []string) {
	if len(values) == 0 {
		Init(0, nil)

		return
	}

	ptrs := make([]*byte, len(values))
	for i, v := range values {
		b := make([]byte, len(v)+1)
		copy(b, v)
		ptrs[i] = &b[0]
	}

	Init(len(ptrs), &ptrs[0])
}

// Cleanup drops the captured arguments. Snapshots returned by [All] stay
// valid.
func Cleanup() {
	store = nil
}

// All returns a snapshot of the captured arguments. It is empty before
// [Init] and after [Cleanup].
func All() *Args {
	items := make([]string, len(store))
	for i, b := range store {
		items[i] = string(b)
	}

	return &Args{
		items: items,
		back:  len(items),
	}
}

// Args is an independent, double-ended sequence of arguments. It must not
// be shared between goroutines.
type Args struct {
	items []string
	front int
	back  int
}

// Next consumes the first remaining argument.
func (a *Args) Next() (string, bool) {
	if a.front == a.back {
		return "", false
	}

	s := a.items[a.front]
	a.front++

	return s, true
}

// NextBack consumes the last remaining argument.
func (a *Args) NextBack() (string, bool) {
	if a.front == a.back {
		return "", false
	}

	a.back--

	return a.items[a.back], true
}

// Len returns the number of remaining arguments.
func (a *Args) Len() int {
	return a.back - a.front
}

// Values iterates over the remaining arguments without consuming them.
func (a *Args) Values() iter.Seq[string] {
	return slices.Values(a.items[a.front:a.back])
}

// Strings returns a copy of the remaining arguments.
func (a *Args) Strings() []string {
	return slices.Clone(a.items[a.front:a.back])
}
