// Package fsmeta models file metadata and file types from raw kernel
// structures.
package fsmeta

import (
	"io/fs"
	"time"

	"github.com/desertwitch/rawos/internal/oserror"
	"golang.org/x/sys/unix"
)

const (
	unixBasePerms  = 0o777
	unixWritePerms = 0o222
)

// FileAttr is a snapshot of a raw kernel stat record.
type FileAttr struct {
	stat unix.Stat_t
}

// FromStat wraps a raw stat record.
func FromStat(stat unix.Stat_t) FileAttr {
	return FileAttr{stat: stat}
}

// Stat returns a copy of the raw stat record.
func (a FileAttr) Stat() unix.Stat_t {
	return a.stat
}

// Size returns the size in bytes.
func (a FileAttr) Size() uint64 {
	return uint64(a.stat.Size) //nolint:gosec
}

// Perm returns the permission bits.
func (a FileAttr) Perm() FilePermissions {
	return FilePermissions{mode: a.stat.Mode & unixBasePerms}
}

// FileType returns the file type.
func (a FileAttr) FileType() FileType {
	return FileType{mode: a.stat.Mode}
}

// Ino returns the inode number.
func (a FileAttr) Ino() uint64 {
	return a.stat.Ino
}

// Nlink returns the number of hard links.
func (a FileAttr) Nlink() uint64 {
	return uint64(a.stat.Nlink)
}

// UID returns the owning user ID.
func (a FileAttr) UID() uint32 {
	return a.stat.Uid
}

// GID returns the owning group ID.
func (a FileAttr) GID() uint32 {
	return a.stat.Gid
}

// Modified returns the last modification time.
func (a FileAttr) Modified() (time.Time, error) {
	return time.Unix(a.stat.Mtim.Unix()), nil
}

// Accessed returns the last access time.
func (a FileAttr) Accessed() (time.Time, error) {
	return time.Unix(a.stat.Atim.Unix()), nil
}

// Created always fails, the stat record does not carry a birth time.
func (a FileAttr) Created() (time.Time, error) {
	return time.Time{}, oserror.New(oserror.KindUnsupported,
		"creation time is not available on this platform currently")
}

// FileMode converts the raw mode into an [fs.FileMode].
func (a FileAttr) FileMode() fs.FileMode {
	mode := fs.FileMode(a.stat.Mode & unixBasePerms)

	switch a.stat.Mode & unix.S_IFMT {
	case unix.S_IFDIR:
		mode |= fs.ModeDir
	case unix.S_IFLNK:
		mode |= fs.ModeSymlink
	case unix.S_IFCHR:
		mode |= fs.ModeDevice | fs.ModeCharDevice
	case unix.S_IFBLK:
		mode |= fs.ModeDevice
	case unix.S_IFIFO:
		mode |= fs.ModeNamedPipe
	case unix.S_IFSOCK:
		mode |= fs.ModeSocket
	}

	if a.stat.Mode&unix.S_ISUID != 0 {
		mode |= fs.ModeSetuid
	}
	if a.stat.Mode&unix.S_ISGID != 0 {
		mode |= fs.ModeSetgid
	}
	if a.stat.Mode&unix.S_ISVTX != 0 {
		mode |= fs.ModeSticky
	}

	return mode
}

// FilePermissions are the nine permission bits of a file.
type FilePermissions struct {
	mode uint32
}

// FromMode keeps the permission bits of mode.
func FromMode(mode uint32) FilePermissions {
	return FilePermissions{mode: mode & unixBasePerms}
}

// Mode returns the permission bits as a raw mode.
func (p FilePermissions) Mode() uint32 {
	return p.mode
}

// Readonly reports whether no write bit is set for owner, group or other.
func (p FilePermissions) Readonly() bool {
	return p.mode&unixWritePerms == 0
}

// SetReadonly clears or sets all three write bits together.
func (p *FilePermissions) SetReadonly(readonly bool) {
	if readonly {
		p.mode &^= unixWritePerms
	} else {
		p.mode |= unixWritePerms
	}
}
