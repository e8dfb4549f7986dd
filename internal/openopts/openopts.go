// Package openopts encodes the intents of opening a file into kernel open
// flags. The encoding is pure validation and never touches the kernel.
package openopts

import (
	"github.com/desertwitch/rawos/internal/oserror"
	"golang.org/x/sys/unix"
)

// DefaultMode is the permission mode of files created without an explicit
// [OpenOptions.Mode].
const DefaultMode = 0o666

// OpenOptions is the set of intents a file is opened with.
type OpenOptions struct {
	read      bool
	write     bool
	append    bool
	truncate  bool
	create    bool
	createNew bool

	customFlags int
	mode        uint32
}

// New returns [OpenOptions] with every intent unset and [DefaultMode].
func New() *OpenOptions {
	return &OpenOptions{
		mode: DefaultMode,
	}
}

// Read sets the intent to read.
func (o *OpenOptions) Read(read bool) *OpenOptions {
	o.read = read

	return o
}

// Write sets the intent to write.
func (o *OpenOptions) Write(write bool) *OpenOptions {
	o.write = write

	return o
}

// Append sets the intent to write at the end of the file only.
func (o *OpenOptions) Append(appendOnly bool) *OpenOptions {
	o.append = appendOnly

	return o
}

// Truncate sets the intent to truncate an existing file to zero length.
func (o *OpenOptions) Truncate(truncate bool) *OpenOptions {
	o.truncate = truncate

	return o
}

// Create sets the intent to create the file if it does not exist.
func (o *OpenOptions) Create(create bool) *OpenOptions {
	o.create = create

	return o
}

// CreateNew sets the intent to create the file and fail if it exists.
func (o *OpenOptions) CreateNew(createNew bool) *OpenOptions {
	o.createNew = createNew

	return o
}

// CustomFlags sets additional open flags. Access mode bits among them are
// ignored.
func (o *OpenOptions) CustomFlags(flags int) *OpenOptions {
	o.customFlags = flags

	return o
}

// Mode sets the permission bits of a newly created file.
func (o *OpenOptions) Mode(mode uint32) *OpenOptions {
	o.mode = mode

	return o
}

// Permissions returns the permission bits of a newly created file.
func (o *OpenOptions) Permissions() uint32 {
	return o.mode
}

// AccessMode derives the access mode flags.
func (o *OpenOptions) AccessMode() (int, error) {
	switch {
	case o.read && !o.write && !o.append:
		return unix.O_RDONLY, nil
	case !o.read && o.write && !o.append:
		return unix.O_WRONLY, nil
	case o.read && o.write && !o.append:
		return unix.O_RDWR, nil
	case !o.read && o.append:
		return unix.O_WRONLY | unix.O_APPEND, nil
	case o.read && o.append:
		return unix.O_RDWR | unix.O_APPEND, nil
	default:
		return 0, oserror.FromErrno(unix.EINVAL)
	}
}

// CreationMode derives the creation flags. Creation intents need write or
// append access, and truncating an appended file is only legal when the file
// is created new.
func (o *OpenOptions) CreationMode() (int, error) {
	switch {
	case o.write && !o.append:
	case !o.write && !o.append:
		if o.truncate || o.create || o.createNew {
			return 0, oserror.FromErrno(unix.EINVAL)
		}
	case o.append:
		if o.truncate && !o.createNew {
			return 0, oserror.FromErrno(unix.EINVAL)
		}
	}

	switch {
	case o.createNew:
		return unix.O_CREAT | unix.O_EXCL, nil
	case o.create && o.truncate:
		return unix.O_CREAT | unix.O_TRUNC, nil
	case o.create:
		return unix.O_CREAT, nil
	case o.truncate:
		return unix.O_TRUNC, nil
	default:
		return 0, nil
	}
}

// Flags encodes all intents into the flags passed to the kernel.
func (o *OpenOptions) Flags() (int, error) {
	access, err := o.AccessMode()
	if err != nil {
		return 0, err
	}

	creation, err := o.CreationMode()
	if err != nil {
		return 0, err
	}

	return unix.O_CLOEXEC |
		unix.O_LARGEFILE |
		access |
		creation |
		(o.customFlags &^ unix.O_ACCMODE), nil
}
