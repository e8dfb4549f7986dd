// Package fd implements an owned file descriptor. A [FileDesc] is the only
// owner of its raw descriptor and releases it exactly once.
package fd

import (
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"
	"slices"

	"github.com/desertwitch/rawos/internal/cvt"
	"github.com/desertwitch/rawos/internal/oserror"
	"golang.org/x/sys/unix"
)

// minReadGrowth is the smallest amount of spare capacity [FileDesc.ReadToEnd]
// reads into.
const minReadGrowth = 32

type kernelProvider interface {
	Read(fd int, p []byte) int64
	Write(fd int, p []byte) int64
	Pread64(fd int, p []byte, offset int64) int64
	Pwrite64(fd int, p []byte, offset int64) int64
	Close(fd int) int64
	Dup(fd int) int64
	Fcntl(fd int, cmd int, arg int) int64
}

type release struct {
	kernel kernelProvider
	fd     int
}

func releaseLeaked(r release) {
	slog.Debug("Releasing unreachable file descriptor", "fd", r.fd)
	r.kernel.Close(r.fd)
}

// FileDesc is an owned raw file descriptor. It is not safe for concurrent
// use. Owners release it with [FileDesc.Close]; a descriptor whose owner
// becomes unreachable without closing it is released by the runtime.
type FileDesc struct {
	kernel   kernelProvider
	fd       int
	cleanup  runtime.Cleanup
	borrowed bool
}

// New takes ownership of the raw descriptor fd.
func New(kernel kernelProvider, fd int) *FileDesc {
	d := &FileDesc{
		kernel: kernel,
		fd:     fd,
	}
	d.cleanup = runtime.AddCleanup(d, releaseLeaked, release{kernel: kernel, fd: fd})

	return d
}

// Borrow wraps a raw descriptor the process inherited, such as a standard
// stream, without taking ownership. Closing a borrowed descriptor only ends
// its use through the FileDesc; the raw descriptor stays open.
func Borrow(kernel kernelProvider, fd int) *FileDesc {
	return &FileDesc{
		kernel:   kernel,
		fd:       fd,
		borrowed: true,
	}
}

// Released returns a FileDesc that refers to no descriptor. Every operation
// on it fails like on a closed one.
func Released(kernel kernelProvider) *FileDesc {
	return &FileDesc{
		kernel: kernel,
		fd:     -1,
	}
}

// Raw returns the raw descriptor, or -1 once it was released.
func (d *FileDesc) Raw() int {
	return d.fd
}

func (d *FileDesc) closedErr() error {
	return oserror.FromErrno(unix.EBADF)
}

// Read reads up to len(p) bytes at the implicit position. Zero bytes read
// with a non-empty p is the end of the stream.
func (d *FileDesc) Read(p []byte) (int, error) {
	defer runtime.KeepAlive(d)

	if d.fd < 0 {
		return 0, d.closedErr()
	}

	return cvt.CvtRetry[int](func() int64 {
		return d.kernel.Read(d.fd, p)
	})
}

// Write writes up to len(p) bytes at the implicit position.
func (d *FileDesc) Write(p []byte) (int, error) {
	defer runtime.KeepAlive(d)

	if d.fd < 0 {
		return 0, d.closedErr()
	}

	return cvt.CvtRetry[int](func() int64 {
		return d.kernel.Write(d.fd, p)
	})
}

// ReadAt reads up to len(p) bytes at offset without moving the implicit
// position.
func (d *FileDesc) ReadAt(p []byte, offset int64) (int, error) {
	defer runtime.KeepAlive(d)

	if d.fd < 0 {
		return 0, d.closedErr()
	}

	return cvt.CvtRetry[int](func() int64 {
		return d.kernel.Pread64(d.fd, p, offset)
	})
}

// WriteAt writes up to len(p) bytes at offset without moving the implicit
// position.
func (d *FileDesc) WriteAt(p []byte, offset int64) (int, error) {
	defer runtime.KeepAlive(d)

	if d.fd < 0 {
		return 0, d.closedErr()
	}

	return cvt.CvtRetry[int](func() int64 {
		return d.kernel.Pwrite64(d.fd, p, offset)
	})
}

// ReadToEnd appends everything up to the end of the stream to buf, growing
// it geometrically, and returns the number of bytes appended. Bytes read
// before a failure stay in buf.
func (d *FileDesc) ReadToEnd(buf *[]byte) (int, error) {
	b := *buf
	start := len(b)

	defer func() {
		*buf = b
	}()

	for {
		if len(b) == cap(b) {
			b = slices.Grow(b, max(cap(b), minReadGrowth))
		}

		n, err := d.Read(b[len(b):cap(b)])
		if err != nil {
			return len(b) - start, err
		}
		if n == 0 {
			return len(b) - start, nil
		}

		b = b[:len(b)+n]
	}
}

// Duplicate returns a new, independently owned descriptor referring to the
// same open file. The new descriptor is close-on-exec.
func (d *FileDesc) Duplicate() (*FileDesc, error) {
	defer runtime.KeepAlive(d)

	if d.fd < 0 {
		return nil, d.closedErr()
	}

	raw, err := cvt.Cvt[int](d.kernel.Dup(d.fd))
	if err != nil {
		return nil, err
	}

	dup := New(d.kernel, raw)
	if err := dup.SetCloexec(); err != nil {
		dup.Close() //nolint:errcheck

		return nil, err
	}

	return dup, nil
}

// SetCloexec marks the descriptor close-on-exec.
func (d *FileDesc) SetCloexec() error {
	defer runtime.KeepAlive(d)

	if d.fd < 0 {
		return d.closedErr()
	}

	flags, err := cvt.Cvt[int](d.kernel.Fcntl(d.fd, unix.F_GETFD, 0))
	if err != nil {
		return err
	}
	if flags&unix.FD_CLOEXEC != 0 {
		return nil
	}

	_, err = cvt.Cvt[int](d.kernel.Fcntl(d.fd, unix.F_SETFD, flags|unix.FD_CLOEXEC))

	return err
}

// Flags returns the file status flags and access mode of the open file.
func (d *FileDesc) Flags() (int, error) {
	defer runtime.KeepAlive(d)

	if d.fd < 0 {
		return 0, d.closedErr()
	}

	return cvt.Cvt[int](d.kernel.Fcntl(d.fd, unix.F_GETFL, 0))
}

// Close releases the descriptor. The descriptor is released even when the
// kernel reports an error, so the call is never retried. Closing a released
// descriptor returns an error wrapping [fs.ErrClosed].
func (d *FileDesc) Close() error {
	if d.fd < 0 {
		return fmt.Errorf("(fd-close) %w", fs.ErrClosed)
	}

	raw := d.fd
	d.fd = -1

	if d.borrowed {
		return nil
	}

	d.cleanup.Stop()

	if _, err := cvt.Cvt[int](d.kernel.Close(raw)); err != nil {
		return err
	}

	return nil
}
