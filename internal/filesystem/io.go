package filesystem

import (
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"github.com/desertwitch/rawos/internal/cvt"
	"github.com/desertwitch/rawos/internal/fd"
	"github.com/desertwitch/rawos/internal/fsmeta"
	"github.com/desertwitch/rawos/internal/readdir"
	"golang.org/x/sys/unix"
)

// File is an open file. It owns its descriptor and is not safe for
// concurrent use.
type File struct {
	kernel kernelProvider
	fd     *fd.FileDesc
}

func newFile(kernel kernelProvider, desc *fd.FileDesc) *File {
	return &File{
		kernel: kernel,
		fd:     desc,
	}
}

// FromFd wraps a descriptor. Inherited standard streams come from
// [fd.Borrow], so closing the File leaves them open.
func (h *Handler) FromFd(desc *fd.FileDesc) *File {
	return newFile(h.kernel, desc)
}

// Read reads up to len(p) bytes. At the end of the file it returns [io.EOF].
func (f *File) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n, err := f.fd.Read(p)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}

	return n, nil
}

// Write writes all of p, issuing as many write calls as the kernel needs.
func (f *File) Write(p []byte) (int, error) {
	var written int

	for written < len(p) {
		n, err := f.fd.Write(p[written:])
		written += n

		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
	}

	return written, nil
}

// ReadAt fills p from offset without moving the file position. It returns
// [io.EOF] when the file ends before p is full.
func (f *File) ReadAt(p []byte, offset int64) (int, error) {
	var read int

	for read < len(p) {
		n, err := f.fd.ReadAt(p[read:], offset+int64(read))
		if err != nil {
			return read, err
		}
		if n == 0 {
			return read, io.EOF
		}

		read += n
	}

	return read, nil
}

// WriteAt writes all of p at offset without moving the file position.
func (f *File) WriteAt(p []byte, offset int64) (int, error) {
	var written int

	for written < len(p) {
		n, err := f.fd.WriteAt(p[written:], offset+int64(written))
		written += n

		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
	}

	return written, nil
}

// Seek moves the file position. whence is one of [io.SeekStart],
// [io.SeekCurrent] or [io.SeekEnd].
func (f *File) Seek(offset int64, whence int) (int64, error) {
	defer runtime.KeepAlive(f)

	var w int
	switch whence {
	case io.SeekStart:
		w = unix.SEEK_SET
	case io.SeekCurrent:
		w = unix.SEEK_CUR
	case io.SeekEnd:
		w = unix.SEEK_END
	default:
		return 0, ErrInvalidWhence
	}

	pos, err := cvt.Cvt[int64](f.kernel.Lseek(f.fd.Raw(), offset, w))
	if err != nil {
		return 0, fmt.Errorf("(fs-seek) failed to seek: %w", err)
	}

	return pos, nil
}

// Flush does nothing; writes are not buffered.
func (f *File) Flush() error {
	return nil
}

// Sync flushes file data and metadata to the storage device.
func (f *File) Sync() error {
	defer runtime.KeepAlive(f)

	if _, err := cvt.CvtRetry[int](func() int64 { return f.kernel.Fsync(f.fd.Raw()) }); err != nil {
		return fmt.Errorf("(fs-sync) failed to sync: %w", err)
	}

	return nil
}

// Datasync flushes file data, and only the metadata needed to read it back.
func (f *File) Datasync() error {
	defer runtime.KeepAlive(f)

	if _, err := cvt.CvtRetry[int](func() int64 { return f.kernel.Fdatasync(f.fd.Raw()) }); err != nil {
		return fmt.Errorf("(fs-sync) failed to datasync: %w", err)
	}

	return nil
}

// Truncate changes the file size to size bytes.
func (f *File) Truncate(size int64) error {
	defer runtime.KeepAlive(f)

	if _, err := cvt.CvtRetry[int](func() int64 { return f.kernel.Ftruncate(f.fd.Raw(), size) }); err != nil {
		return fmt.Errorf("(fs-truncate) failed to truncate to %d: %w", size, err)
	}

	return nil
}

// Metadata returns the metadata of the open file.
func (f *File) Metadata() (fsmeta.FileAttr, error) {
	defer runtime.KeepAlive(f)

	attr, err := fsmeta.Fstat(f.kernel, f.fd.Raw())
	if err != nil {
		return fsmeta.FileAttr{}, fmt.Errorf("(fs-fstat) failed to stat: %w", err)
	}

	return attr, nil
}

// ReadDir streams the entries of the open directory from its start. The
// stream reads through a duplicate of the descriptor, so it follows the
// directory even if its path changes. root only names the entries.
func (f *File) ReadDir(root string) (*readdir.ReadDir, error) {
	dup, err := f.Duplicate()
	if err != nil {
		return nil, fmt.Errorf("(fs-readdir) failed to duplicate: %w", err)
	}

	if _, err := dup.Seek(0, io.SeekStart); err != nil {
		dup.Close() //nolint:errcheck

		return nil, err
	}

	return readdir.New(f.kernel, dup.IntoFd(), root), nil
}

// LstatAt returns the metadata of name inside the open directory, without
// following a final symbolic link.
func (f *File) LstatAt(name string) (fsmeta.FileAttr, error) {
	defer runtime.KeepAlive(f)

	attr, err := fsmeta.LstatAt(f.kernel, f.fd.Raw(), name)
	if err != nil {
		return fsmeta.FileAttr{}, fmt.Errorf("(fs-lstat) failed to stat %s: %w", name, err)
	}

	return attr, nil
}

// ReadToEnd appends the rest of the file to buf.
func (f *File) ReadToEnd(buf *[]byte) (int, error) {
	return f.fd.ReadToEnd(buf)
}

// Duplicate returns a second File sharing the open file description.
func (f *File) Duplicate() (*File, error) {
	desc, err := f.fd.Duplicate()
	if err != nil {
		return nil, err
	}

	return newFile(f.kernel, desc), nil
}

// Fd returns the owned descriptor without giving it up.
func (f *File) Fd() *fd.FileDesc {
	return f.fd
}

// IntoFd hands the descriptor over to the caller. Afterwards the File
// behaves as closed.
func (f *File) IntoFd() *fd.FileDesc {
	desc := f.fd
	f.fd = fd.Released(f.kernel)

	return desc
}

// Close releases the descriptor. Closing twice, or after [File.IntoFd],
// returns an error wrapping [io/fs.ErrClosed].
func (f *File) Close() error {
	return f.fd.Close()
}

// String describes the descriptor, the path it refers to and its access
// mode, leaving out whatever cannot be determined.
func (f *File) String() string {
	defer runtime.KeepAlive(f)

	raw := f.fd.Raw()

	var b strings.Builder
	b.WriteString("File{fd: ")
	b.WriteString(strconv.Itoa(raw))

	if path, err := readlink(f.kernel, "/proc/self/fd/"+strconv.Itoa(raw), readlinkInitialSize); err == nil {
		b.WriteString(", path: ")
		b.WriteString(path)
	}

	if flags, err := f.fd.Flags(); err == nil {
		switch flags & unix.O_ACCMODE {
		case unix.O_RDONLY:
			b.WriteString(", read: true, write: false")
		case unix.O_WRONLY:
			b.WriteString(", read: false, write: true")
		case unix.O_RDWR:
			b.WriteString(", read: true, write: true")
		}
	}

	b.WriteString("}")

	return b.String()
}
