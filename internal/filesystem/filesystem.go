// Package filesystem is the path-level file API of rawos. A [Handler]
// combines the open flag engine, owned descriptors, metadata lookups and the
// directory stream into the operations a program uses on files.
package filesystem

import (
	"fmt"
	"strings"

	"github.com/desertwitch/rawos/internal/cvt"
	"github.com/desertwitch/rawos/internal/fd"
	"github.com/desertwitch/rawos/internal/fsmeta"
	"github.com/desertwitch/rawos/internal/kernel"
	"github.com/desertwitch/rawos/internal/openopts"
	"github.com/desertwitch/rawos/internal/readdir"
	"golang.org/x/sys/unix"
)

type kernelProvider interface {
	Read(fd int, p []byte) int64
	Write(fd int, p []byte) int64
	Pread64(fd int, p []byte, offset int64) int64
	Pwrite64(fd int, p []byte, offset int64) int64
	Openat(dirfd int, path string, flags int, mode uint32) int64
	Close(fd int) int64
	Lseek(fd int, offset int64, whence int) int64
	Fstat(fd int, st *unix.Stat_t) int64
	Fstatat(dirfd int, path string, st *unix.Stat_t, flags int) int64
	Fsync(fd int) int64
	Fdatasync(fd int) int64
	Ftruncate(fd int, length int64) int64
	Getdents64(fd int, buf []byte) int64
	Mkdirat(dirfd int, path string, mode uint32) int64
	Unlinkat(dirfd int, path string, flags int) int64
	Renameat2(olddirfd int, oldpath string, newdirfd int, newpath string, flags uint) int64
	Fchmodat(dirfd int, path string, mode uint32) int64
	Readlinkat(dirfd int, path string, buf []byte) int64
	Symlinkat(target string, newdirfd int, linkpath string) int64
	Linkat(olddirfd int, oldpath string, newdirfd int, newpath string, flags int) int64
	Fcntl(fd int, cmd int, arg int) int64
	Dup(fd int) int64
}

// Handler performs path-level file operations relative to the current
// working directory.
type Handler struct {
	kernel kernelProvider
}

// NewHandler returns a pointer to a new filesystem [Handler] issuing its
// system calls through kernel.
func NewHandler(kernel kernelProvider) *Handler {
	return &Handler{
		kernel: kernel,
	}
}

func checkPath(paths ...string) error {
	for _, p := range paths {
		if strings.IndexByte(p, 0) >= 0 {
			return ErrNulByte
		}
	}

	return nil
}

// Open opens path with the given options. Invalid option combinations are
// rejected before any system call is made.
func (h *Handler) Open(path string, opts *openopts.OpenOptions) (*File, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}

	flags, err := opts.Flags()
	if err != nil {
		return nil, fmt.Errorf("(fs-open) invalid options for %s: %w", path, err)
	}

	raw, err := cvt.CvtRetry[int](func() int64 {
		return h.kernel.Openat(kernel.AtFdCwd, path, flags, opts.Permissions())
	})
	if err != nil {
		return nil, fmt.Errorf("(fs-open) failed to open %s: %w", path, err)
	}

	desc := fd.New(h.kernel, raw)

	if err := desc.SetCloexec(); err != nil {
		desc.Close() //nolint:errcheck

		return nil, fmt.Errorf("(fs-open) failed to set close-on-exec on %s: %w", path, err)
	}

	return newFile(h.kernel, desc), nil
}

// OpenRead opens path read-only.
func (h *Handler) OpenRead(path string) (*File, error) {
	return h.Open(path, openopts.New().Read(true))
}

// Create opens path write-only, creating it or truncating it.
func (h *Handler) Create(path string) (*File, error) {
	return h.Open(path, openopts.New().Write(true).Create(true).Truncate(true))
}

// Stat returns the metadata of path, following symbolic links.
func (h *Handler) Stat(path string) (fsmeta.FileAttr, error) {
	if err := checkPath(path); err != nil {
		return fsmeta.FileAttr{}, err
	}

	attr, err := fsmeta.Stat(h.kernel, path)
	if err != nil {
		return fsmeta.FileAttr{}, fmt.Errorf("(fs-stat) failed to stat %s: %w", path, err)
	}

	return attr, nil
}

// Lstat returns the metadata of path without following a final symbolic
// link.
func (h *Handler) Lstat(path string) (fsmeta.FileAttr, error) {
	if err := checkPath(path); err != nil {
		return fsmeta.FileAttr{}, err
	}

	attr, err := fsmeta.Lstat(h.kernel, path)
	if err != nil {
		return fsmeta.FileAttr{}, fmt.Errorf("(fs-lstat) failed to lstat %s: %w", path, err)
	}

	return attr, nil
}

// ReadDir opens path as a directory and returns a stream of its entries.
// The caller closes the stream, or drains it to the end.
func (h *Handler) ReadDir(path string) (*readdir.ReadDir, error) {
	f, err := h.Open(path, openopts.New().Read(true).CustomFlags(unix.O_DIRECTORY))
	if err != nil {
		return nil, err
	}

	return readdir.New(h.kernel, f.IntoFd(), path), nil
}

// Unlink removes the directory entry path. It does not remove directories.
func (h *Handler) Unlink(path string) error {
	if err := checkPath(path); err != nil {
		return err
	}

	if _, err := cvt.Cvt[int](h.kernel.Unlinkat(kernel.AtFdCwd, path, 0)); err != nil {
		return fmt.Errorf("(fs-unlink) failed to unlink %s: %w", path, err)
	}

	return nil
}

// Rename moves oldpath to newpath, replacing newpath if it exists.
func (h *Handler) Rename(oldpath, newpath string) error {
	if err := checkPath(oldpath, newpath); err != nil {
		return err
	}

	if _, err := cvt.Cvt[int](h.kernel.Renameat2(kernel.AtFdCwd, oldpath, kernel.AtFdCwd, newpath, 0)); err != nil {
		return fmt.Errorf("(fs-rename) failed to rename %s to %s: %w", oldpath, newpath, err)
	}

	return nil
}

// SetPermissions sets the permission bits of path, following symbolic links.
func (h *Handler) SetPermissions(path string, perm fsmeta.FilePermissions) error {
	if err := checkPath(path); err != nil {
		return err
	}

	_, err := cvt.CvtRetry[int](func() int64 {
		return h.kernel.Fchmodat(kernel.AtFdCwd, path, perm.Mode())
	})
	if err != nil {
		return fmt.Errorf("(fs-chmod) failed to set permissions on %s: %w", path, err)
	}

	return nil
}

// Rmdir removes the empty directory path.
func (h *Handler) Rmdir(path string) error {
	if err := checkPath(path); err != nil {
		return err
	}

	if _, err := cvt.Cvt[int](h.kernel.Unlinkat(kernel.AtFdCwd, path, unix.AT_REMOVEDIR)); err != nil {
		return fmt.Errorf("(fs-rmdir) failed to remove %s: %w", path, err)
	}

	return nil
}

// Symlink creates linkpath as a symbolic link pointing to target.
func (h *Handler) Symlink(target, linkpath string) error {
	if err := checkPath(target, linkpath); err != nil {
		return err
	}

	if _, err := cvt.Cvt[int](h.kernel.Symlinkat(target, kernel.AtFdCwd, linkpath)); err != nil {
		return fmt.Errorf("(fs-symlink) failed to link %s to %s: %w", linkpath, target, err)
	}

	return nil
}

// Link creates newpath as a hard link to oldpath.
func (h *Handler) Link(oldpath, newpath string) error {
	if err := checkPath(oldpath, newpath); err != nil {
		return err
	}

	if _, err := cvt.Cvt[int](h.kernel.Linkat(kernel.AtFdCwd, oldpath, kernel.AtFdCwd, newpath, 0)); err != nil {
		return fmt.Errorf("(fs-link) failed to link %s to %s: %w", newpath, oldpath, err)
	}

	return nil
}

// RemoveDirAll is not supported.
func (h *Handler) RemoveDirAll(string) error {
	return ErrRecursiveRemoval
}

// Canonicalize is not supported.
func (h *Handler) Canonicalize(string) (string, error) {
	return "", ErrCanonicalize
}
