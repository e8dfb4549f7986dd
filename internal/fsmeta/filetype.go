package fsmeta

import "golang.org/x/sys/unix"

// FileType is the format of a file, compared under [unix.S_IFMT].
type FileType struct {
	mode uint32
}

// FileTypeFromMode keeps the format bits of a raw mode.
func FileTypeFromMode(mode uint32) FileType {
	return FileType{mode: mode & unix.S_IFMT}
}

// FileTypeFromDirent maps an inline directory entry type to a [FileType].
// It returns false for [unix.DT_UNKNOWN] and anything unrecognized.
func FileTypeFromDirent(typ uint8) (FileType, bool) {
	switch typ {
	case unix.DT_CHR:
		return FileType{mode: unix.S_IFCHR}, true
	case unix.DT_FIFO:
		return FileType{mode: unix.S_IFIFO}, true
	case unix.DT_LNK:
		return FileType{mode: unix.S_IFLNK}, true
	case unix.DT_REG:
		return FileType{mode: unix.S_IFREG}, true
	case unix.DT_SOCK:
		return FileType{mode: unix.S_IFSOCK}, true
	case unix.DT_DIR:
		return FileType{mode: unix.S_IFDIR}, true
	case unix.DT_BLK:
		return FileType{mode: unix.S_IFBLK}, true
	default:
		return FileType{}, false
	}
}

// Is reports whether the format equals the given S_IF* tag.
func (t FileType) Is(format uint32) bool {
	return t.mode&unix.S_IFMT == format
}

// IsDir reports whether the type is a directory.
func (t FileType) IsDir() bool { return t.Is(unix.S_IFDIR) }

// IsFile reports whether the type is a regular file.
func (t FileType) IsFile() bool { return t.Is(unix.S_IFREG) }

// IsSymlink reports whether the type is a symbolic link.
func (t FileType) IsSymlink() bool { return t.Is(unix.S_IFLNK) }

// IsCharDevice reports whether the type is a character device.
func (t FileType) IsCharDevice() bool { return t.Is(unix.S_IFCHR) }

// IsBlockDevice reports whether the type is a block device.
func (t FileType) IsBlockDevice() bool { return t.Is(unix.S_IFBLK) }

// IsFIFO reports whether the type is a named pipe.
func (t FileType) IsFIFO() bool { return t.Is(unix.S_IFIFO) }

// IsSocket reports whether the type is a socket.
func (t FileType) IsSocket() bool { return t.Is(unix.S_IFSOCK) }

// String returns a short lowercase name of the type.
func (t FileType) String() string {
	switch t.mode & unix.S_IFMT {
	case unix.S_IFREG:
		return "file"
	case unix.S_IFDIR:
		return "directory"
	case unix.S_IFLNK:
		return "symlink"
	case unix.S_IFCHR:
		return "char device"
	case unix.S_IFBLK:
		return "block device"
	case unix.S_IFIFO:
		return "fifo"
	case unix.S_IFSOCK:
		return "socket"
	default:
		return "unknown"
	}
}
