// Package aferofs exposes the rawos file API as an [afero.Fs], so code
// written against afero can run on top of the raw system call layer.
package aferofs

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/desertwitch/rawos/internal/filesystem"
	"github.com/desertwitch/rawos/internal/fsmeta"
	"github.com/desertwitch/rawos/internal/openopts"
	"github.com/desertwitch/rawos/internal/oserror"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

var (
	_ afero.Fs        = (*Fs)(nil)
	_ afero.Symlinker = (*Fs)(nil)
)

// Fs is an [afero.Fs] backed by a [filesystem.Handler]. Relative paths are
// resolved against the working directory of the process.
type Fs struct {
	fs *filesystem.Handler
}

// New returns a pointer to a new [Fs] performing its operations through
// handler.
func New(handler *filesystem.Handler) *Fs {
	return &Fs{
		fs: handler,
	}
}

// Name returns the name of the filesystem implementation.
func (*Fs) Name() string {
	return "rawos"
}

// Create creates or truncates name for reading and writing.
func (f *Fs) Create(name string) (afero.File, error) {
	return f.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

// Open opens name for reading.
func (f *Fs) Open(name string) (afero.File, error) {
	return f.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile translates os-style flags into open options. Flags without a
// dedicated option are passed through as custom flags.
func (f *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	opts := optionsFromFlag(flag).Mode(unixMode(perm))

	file, err := f.fs.Open(name, opts)
	if err != nil {
		return nil, pathError("open", name, err)
	}

	return newFile(file, name), nil
}

func optionsFromFlag(flag int) *openopts.OpenOptions {
	opts := openopts.New()

	switch flag & unix.O_ACCMODE {
	case os.O_RDONLY:
		opts.Read(true)
	case os.O_WRONLY:
		opts.Write(true)
	case os.O_RDWR:
		opts.Read(true).Write(true)
	}

	if flag&os.O_APPEND != 0 {
		opts.Append(true)
	}
	if flag&os.O_TRUNC != 0 {
		opts.Truncate(true)
	}
	if flag&os.O_CREATE != 0 {
		if flag&os.O_EXCL != 0 {
			opts.CreateNew(true)
		} else {
			opts.Create(true)
		}
	}

	return opts.CustomFlags(flag &^ (unix.O_ACCMODE | os.O_APPEND | os.O_TRUNC | os.O_CREATE | os.O_EXCL))
}

func unixMode(perm os.FileMode) uint32 {
	mode := uint32(perm.Perm())

	if perm&os.ModeSetuid != 0 {
		mode |= unix.S_ISUID
	}
	if perm&os.ModeSetgid != 0 {
		mode |= unix.S_ISGID
	}
	if perm&os.ModeSticky != 0 {
		mode |= unix.S_ISVTX
	}

	return mode
}

// Mkdir creates the directory name with perm.
func (f *Fs) Mkdir(name string, perm os.FileMode) error {
	if err := f.fs.NewDirBuilder().Mode(unixMode(perm)).Mkdir(name); err != nil {
		return pathError("mkdir", name, err)
	}

	return nil
}

// MkdirAll creates name and any missing parents. Existing directories are
// not an error.
func (f *Fs) MkdirAll(name string, perm os.FileMode) error {
	if attr, err := f.fs.Stat(name); err == nil {
		if attr.FileType().IsDir() {
			return nil
		}

		return pathError("mkdir", name, oserror.FromErrno(unix.ENOTDIR))
	}

	if parent := path.Dir(name); parent != name && parent != "." {
		if err := f.MkdirAll(parent, perm); err != nil {
			return err
		}
	}

	if err := f.Mkdir(name, perm); err != nil {
		// Lost a race, or name ended in "/.".
		if attr, serr := f.fs.Lstat(name); serr == nil && attr.FileType().IsDir() {
			return nil
		}

		return err
	}

	return nil
}

// Remove unlinks a file, or removes an empty directory.
func (f *Fs) Remove(name string) error {
	uerr := f.fs.Unlink(name)
	if uerr == nil {
		return nil
	}

	rerr := f.fs.Rmdir(name)
	if rerr == nil {
		return nil
	}

	if errors.Is(rerr, unix.ENOTDIR) {
		return pathError("remove", name, uerr)
	}

	return pathError("remove", name, rerr)
}

// RemoveAll fails, as [filesystem.Handler.RemoveDirAll] does.
func (f *Fs) RemoveAll(name string) error {
	return pathError("removeall", name, f.fs.RemoveDirAll(name))
}

// Rename moves oldname to newname, replacing newname.
func (f *Fs) Rename(oldname, newname string) error {
	if err := f.fs.Rename(oldname, newname); err != nil {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: err}
	}

	return nil
}

// Stat returns the metadata of name, following symbolic links.
func (f *Fs) Stat(name string) (os.FileInfo, error) {
	attr, err := f.fs.Stat(name)
	if err != nil {
		return nil, pathError("stat", name, err)
	}

	return newFileInfo(path.Base(name), attr), nil
}

// LstatIfPossible always uses lstat.
func (f *Fs) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	attr, err := f.fs.Lstat(name)
	if err != nil {
		return nil, true, pathError("lstat", name, err)
	}

	return newFileInfo(path.Base(name), attr), true, nil
}

// SymlinkIfPossible creates newname as a symbolic link to oldname.
func (f *Fs) SymlinkIfPossible(oldname, newname string) error {
	if err := f.fs.Symlink(oldname, newname); err != nil {
		return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: err}
	}

	return nil
}

// ReadlinkIfPossible returns the target of the symbolic link name.
func (f *Fs) ReadlinkIfPossible(name string) (string, error) {
	target, err := f.fs.Readlink(name)
	if err != nil {
		return "", pathError("readlink", name, err)
	}

	return target, nil
}

// Chmod sets the permission bits of name. Setuid, setgid and sticky bits
// are not carried over.
func (f *Fs) Chmod(name string, mode os.FileMode) error {
	if err := f.fs.SetPermissions(name, fsmeta.FromMode(uint32(mode.Perm()))); err != nil {
		return pathError("chmod", name, err)
	}

	return nil
}

// Chown is unsupported and fails with [ErrOwnership].
func (*Fs) Chown(name string, _, _ int) error {
	return pathError("chown", name, ErrOwnership)
}

// Chtimes is unsupported and fails with [ErrTimestamps].
func (*Fs) Chtimes(name string, _, _ time.Time) error {
	return pathError("chtimes", name, ErrTimestamps)
}

func pathError(op, name string, err error) error {
	return &fs.PathError{Op: op, Path: name, Err: err}
}
