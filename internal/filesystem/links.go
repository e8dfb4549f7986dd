package filesystem

import (
	"fmt"

	"github.com/desertwitch/rawos/internal/cvt"
	"github.com/desertwitch/rawos/internal/kernel"
)

const readlinkInitialSize = 256

// Readlink returns the target of the symbolic link path.
func (h *Handler) Readlink(path string) (string, error) {
	if err := checkPath(path); err != nil {
		return "", err
	}

	target, err := readlink(h.kernel, path, readlinkInitialSize)
	if err != nil {
		return "", fmt.Errorf("(fs-readlink) failed to read link %s: %w", path, err)
	}

	return target, nil
}

type readlinkProvider interface {
	Readlinkat(dirfd int, path string, buf []byte) int64
}

// readlink reads the target into a buffer of size bytes, doubling it while
// the kernel fills it completely, which may mean it was truncated.
func readlink(k readlinkProvider, path string, size int) (string, error) {
	buf := make([]byte, max(size, 1))

	for {
		n, err := cvt.Cvt[int](k.Readlinkat(kernel.AtFdCwd, path, buf))
		if err != nil {
			return "", err
		}

		if n < len(buf) {
			return string(buf[:n]), nil
		}

		buf = make([]byte, 2*len(buf))
	}
}
