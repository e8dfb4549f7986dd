// Package readdir streams directory entries straight from the getdents64
// protocol. A [ReadDir] refills one fixed buffer per system call and walks
// the variable-length records in it.
package readdir

import (
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"unsafe"

	"github.com/desertwitch/rawos/internal/cvt"
	"github.com/desertwitch/rawos/internal/fd"
	"github.com/desertwitch/rawos/internal/fsmeta"
	"golang.org/x/sys/unix"
)

// BufferCapacity is the size of the buffer each getdents64 call fills.
const BufferCapacity = 32 * 1024

// Layout of a linux_dirent64 record.
const (
	direntInoOff    = int(unsafe.Offsetof(unix.Dirent{}.Ino))
	direntOffOff    = int(unsafe.Offsetof(unix.Dirent{}.Off))
	direntReclenOff = int(unsafe.Offsetof(unix.Dirent{}.Reclen))
	direntTypeOff   = int(unsafe.Offsetof(unix.Dirent{}.Type))
	direntNameOff   = int(unsafe.Offsetof(unix.Dirent{}.Name))
)

type kernelProvider interface {
	Getdents64(fd int, buf []byte) int64
	Fstat(fd int, st *unix.Stat_t) int64
	Fstatat(dirfd int, path string, st *unix.Stat_t, flags int) int64
}

// ReadDir is a lazy stream of the entries of one opened directory. It owns
// the directory descriptor and is not safe for concurrent use.
type ReadDir struct {
	kernel kernelProvider
	dir    *fd.FileDesc
	root   string
	buf    []byte
	offset int

	exhausted bool
}

// New returns a stream over the opened directory dir, whose path is root.
// The stream takes ownership of dir.
func New(kernel kernelProvider, dir *fd.FileDesc, root string) *ReadDir {
	return &ReadDir{
		kernel: kernel,
		dir:    dir,
		root:   root,
		buf:    make([]byte, 0, BufferCapacity),
	}
}

// Next returns the next entry. At the end of the directory it returns
// [io.EOF]. A failing getdents64 call is returned once; afterwards, like at
// the end, the stream is exhausted and keeps returning [io.EOF].
func (r *ReadDir) Next() (*DirEntry, error) {
	if r.exhausted {
		return nil, io.EOF
	}

	if r.offset == len(r.buf) {
		r.offset = 0
		r.buf = r.buf[:0]

		n, err := cvt.Cvt[int](r.kernel.Getdents64(r.dir.Raw(), r.buf[:cap(r.buf)]))
		if err != nil {
			r.finish()

			return nil, fmt.Errorf("(readdir) failed to getdents: %w", err)
		}
		if n == 0 {
			r.finish()

			return nil, io.EOF
		}
		if n > cap(r.buf) {
			panic(fmt.Sprintf("getdents64 reported %d bytes for a buffer of %d", n, cap(r.buf)))
		}

		r.buf = r.buf[:n]
	}

	rec := r.buf[r.offset:]
	if len(rec) < direntNameOff {
		panic(fmt.Sprintf("truncated directory entry record at offset %d", r.offset))
	}

	reclen := int(binary.NativeEndian.Uint16(rec[direntReclenOff:]))
	if reclen <= direntNameOff || reclen > len(rec) {
		panic(fmt.Sprintf("invalid directory entry record length %d at offset %d", reclen, r.offset))
	}
	r.offset += reclen

	return newDirEntry(r.kernel, rec[:reclen], r.root), nil
}

// All returns an iterator over the remaining entries. Iteration stops after
// the first error.
func (r *ReadDir) All() iter.Seq2[*DirEntry, error] {
	return func(yield func(*DirEntry, error) bool) {
		for {
			entry, err := r.Next()
			if err == io.EOF { //nolint:errorlint
				return
			}
			if !yield(entry, err) || err != nil {
				return
			}
		}
	}
}

// Close exhausts the stream and releases the directory descriptor.
func (r *ReadDir) Close() error {
	if r.exhausted {
		return nil
	}

	r.exhausted = true
	r.buf = nil

	if err := r.dir.Close(); err != nil {
		return fmt.Errorf("(readdir) failed to close: %w", err)
	}

	return nil
}

func (r *ReadDir) finish() {
	if err := r.Close(); err != nil {
		slog.Warn("Failure releasing exhausted directory stream",
			"path", r.root,
			"err", err,
		)
	}
}

// String returns the directory path, or <exhausted> once the stream ended.
func (r *ReadDir) String() string {
	if r.exhausted {
		return "<exhausted>"
	}

	return r.root
}

// DirEntry is one entry of a directory. It keeps its own copy of the
// directory path.
type DirEntry struct {
	kernel kernelProvider

	ino  uint64
	off  int64
	typ  uint8
	name string
	root string
}

func newDirEntry(kernel kernelProvider, rec []byte, root string) *DirEntry {
	name := rec[direntNameOff:]
	for i, c := range name {
		if c == 0 {
			name = name[:i]

			break
		}
	}

	return &DirEntry{
		kernel: kernel,
		ino:    binary.NativeEndian.Uint64(rec[direntInoOff:]),
		off:    int64(binary.NativeEndian.Uint64(rec[direntOffOff:])), //nolint:gosec
		typ:    rec[direntTypeOff],
		name:   string(name),
		root:   root,
	}
}

// Name returns the entry name.
func (e *DirEntry) Name() string {
	return e.name
}

// Path returns the directory path joined with the entry name.
func (e *DirEntry) Path() string {
	return Join(e.root, e.name)
}

// Ino returns the inode number.
func (e *DirEntry) Ino() uint64 {
	return e.ino
}

// Offset returns the opaque stream position following this entry.
func (e *DirEntry) Offset() int64 {
	return e.off
}

// Metadata looks up the full metadata of the entry without following a
// symbolic link.
func (e *DirEntry) Metadata() (fsmeta.FileAttr, error) {
	return fsmeta.Lstat(e.kernel, e.Path())
}

// FileType returns the type hint of the entry. Filesystems that do not fill
// in the hint cost one extra lstat.
func (e *DirEntry) FileType() (fsmeta.FileType, error) {
	if ft, ok := fsmeta.FileTypeFromDirent(e.typ); ok {
		return ft, nil
	}

	attr, err := e.Metadata()
	if err != nil {
		return fsmeta.FileType{}, err
	}

	return attr.FileType(), nil
}

// Join appends name to dir with exactly one separator, without cleaning.
func Join(dir, name string) string {
	switch {
	case dir == "":
		return name
	case dir[len(dir)-1] == '/':
		return dir + name
	default:
		return dir + "/" + name
	}
}
