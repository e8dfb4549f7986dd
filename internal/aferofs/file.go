package aferofs

import (
	"io"
	"os"
	"path"
	"time"

	"github.com/desertwitch/rawos/internal/filesystem"
	"github.com/desertwitch/rawos/internal/fsmeta"
	"github.com/desertwitch/rawos/internal/oserror"
	"github.com/spf13/afero"
)

var _ afero.File = (*File)(nil)

// File is an [afero.File] over an open [filesystem.File].
type File struct {
	file *filesystem.File
	name string

	// Directory listings are taken once, on the first Readdir call, from
	// the open descriptor and handed out from this snapshot until a Seek
	// resets it.
	snapshot []os.FileInfo
	off      int
}

func newFile(file *filesystem.File, name string) *File {
	return &File{
		file: file,
		name: name,
	}
}

// Raw returns the underlying file.
func (f *File) Raw() *filesystem.File {
	return f.file
}

// Name returns the name the file was opened with.
func (f *File) Name() string {
	return f.name
}

// Close closes the underlying descriptor.
func (f *File) Close() error {
	return f.wrap("close", f.file.Close())
}

func (f *File) Read(p []byte) (int, error) {
	n, err := f.file.Read(p)

	return n, f.wrap("read", err)
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	n, err := f.file.ReadAt(p, off)

	return n, f.wrap("read", err)
}

func (f *File) Write(p []byte) (int, error) {
	n, err := f.file.Write(p)

	return n, f.wrap("write", err)
}

func (f *File) WriteAt(p []byte, off int64) (int, error) {
	n, err := f.file.WriteAt(p, off)

	return n, f.wrap("write", err)
}

func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// Seek moves the file position. It also restarts directory listing.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	f.snapshot = nil
	f.off = 0

	pos, err := f.file.Seek(offset, whence)

	return pos, f.wrap("seek", err)
}

// Stat returns the metadata of the open file.
func (f *File) Stat() (os.FileInfo, error) {
	attr, err := f.file.Metadata()
	if err != nil {
		return nil, f.wrap("stat", err)
	}

	return newFileInfo(path.Base(f.name), attr), nil
}

func (f *File) Sync() error {
	return f.wrap("sync", f.file.Sync())
}

func (f *File) Truncate(size int64) error {
	return f.wrap("truncate", f.file.Truncate(size))
}

// Readdir lists the directory the file was opened on, without the "." and
// ".." entries. A count of zero or less returns everything that is left.
func (f *File) Readdir(count int) ([]os.FileInfo, error) {
	if f.snapshot == nil {
		snapshot, err := f.list()
		if err != nil {
			return []os.FileInfo{}, f.wrap("readdirent", err)
		}
		f.snapshot = snapshot
	}

	rest := f.snapshot[f.off:]

	if count <= 0 || count >= len(rest) {
		var err error
		if len(rest) == 0 && count > 0 {
			err = io.EOF
		}
		f.off = len(f.snapshot)

		return rest, err
	}

	f.off += count

	return rest[:count], nil
}

func (f *File) list() ([]os.FileInfo, error) {
	stream, err := f.file.ReadDir(f.name)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	infos := []os.FileInfo{}
	for entry, err := range stream.All() {
		if err != nil {
			return nil, err
		}
		if entry.Name() == "." || entry.Name() == ".." {
			continue
		}

		attr, err := f.file.LstatAt(entry.Name())
		if err != nil {
			if oserror.KindOf(err) == oserror.KindNotFound {
				continue
			}

			return nil, err
		}

		infos = append(infos, newFileInfo(entry.Name(), attr))
	}

	return infos, nil
}

// Readdirnames is [File.Readdir] reduced to the entry names.
func (f *File) Readdirnames(n int) ([]string, error) {
	infos, err := f.Readdir(n)

	names := make([]string, len(infos))
	for i, fi := range infos {
		names[i] = fi.Name()
	}

	return names, err
}

func (f *File) wrap(op string, err error) error {
	if err == nil || err == io.EOF { //nolint:errorlint
		return err
	}

	return pathError(op, f.name, err)
}

type fileInfo struct {
	name string
	attr fsmeta.FileAttr
}

var _ os.FileInfo = fileInfo{}

func newFileInfo(name string, attr fsmeta.FileAttr) fileInfo {
	return fileInfo{
		name: name,
		attr: attr,
	}
}

func (i fileInfo) Name() string {
	return i.name
}

func (i fileInfo) Size() int64 {
	return int64(i.attr.Size()) //nolint:gosec
}

func (i fileInfo) Mode() os.FileMode {
	return i.attr.FileMode()
}

func (i fileInfo) ModTime() time.Time {
	mtime, _ := i.attr.Modified()

	return mtime
}

func (i fileInfo) IsDir() bool {
	return i.attr.FileType().IsDir()
}

// Sys returns the *unix.Stat_t the information was built from.
func (i fileInfo) Sys() any {
	st := i.attr.Stat()

	return &st
}
