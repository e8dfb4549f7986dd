package filesystem

import (
	"fmt"

	"github.com/desertwitch/rawos/internal/cvt"
	"github.com/desertwitch/rawos/internal/kernel"
)

// DefaultDirMode is the mode new directories are requested with. The
// process umask still applies.
const DefaultDirMode = 0o777

type mkdirProvider interface {
	Mkdirat(dirfd int, path string, mode uint32) int64
}

// DirBuilder creates directories with a configurable mode.
type DirBuilder struct {
	kernel mkdirProvider
	mode   uint32
}

// NewDirBuilder returns a pointer to a new [DirBuilder] using
// [DefaultDirMode].
func (h *Handler) NewDirBuilder() *DirBuilder {
	return &DirBuilder{
		kernel: h.kernel,
		mode:   DefaultDirMode,
	}
}

// Mode sets the permission bits of the directories built, before the
// umask applies.
func (b *DirBuilder) Mode(mode uint32) *DirBuilder {
	b.mode = mode

	return b
}

// Mkdir creates the single directory path. Missing parents are not created.
func (b *DirBuilder) Mkdir(path string) error {
	if err := checkPath(path); err != nil {
		return err
	}

	if _, err := cvt.Cvt[int](b.kernel.Mkdirat(kernel.AtFdCwd, path, b.mode)); err != nil {
		return fmt.Errorf("(fs-mkdir) failed to create %s: %w", path, err)
	}

	return nil
}

// Mkdir creates the single directory path with [DefaultDirMode].
func (h *Handler) Mkdir(path string) error {
	return h.NewDirBuilder().Mkdir(path)
}
