// Package oserror implements the single error representation of rawos. An
// [Error] either carries a raw operating system error number, as reported by
// the kernel or synthesized locally, or a [Kind] with a descriptive message.
package oserror

import (
	"errors"
	"fmt"
	"io/fs"

	"golang.org/x/sys/unix"
)

// Kind is a portable classification of an [Error].
type Kind int

const (
	KindOther Kind = iota
	KindNotFound
	KindPermissionDenied
	KindAlreadyExists
	KindInvalidInput
	KindInterrupted
	KindWouldBlock
	KindBrokenPipe
	KindNotADirectory
	KindIsADirectory
	KindDirectoryNotEmpty
	KindUnsupported
	KindInvalidData
)

//nolint:gochecknoglobals
var kindNames = map[Kind]string{
	KindOther:             "other error",
	KindNotFound:          "entity not found",
	KindPermissionDenied:  "permission denied",
	KindAlreadyExists:     "entity already exists",
	KindInvalidInput:      "invalid input parameter",
	KindInterrupted:       "operation interrupted",
	KindWouldBlock:        "operation would block",
	KindBrokenPipe:        "broken pipe",
	KindNotADirectory:     "not a directory",
	KindIsADirectory:      "is a directory",
	KindDirectoryNotEmpty: "directory not empty",
	KindUnsupported:       "unsupported",
	KindInvalidData:       "invalid data",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// KindOfErrno classifies a raw error number.
func KindOfErrno(errno unix.Errno) Kind {
	switch errno { //nolint:exhaustive
	case unix.ENOENT:
		return KindNotFound
	case unix.EACCES, unix.EPERM:
		return KindPermissionDenied
	case unix.EEXIST:
		return KindAlreadyExists
	case unix.EINVAL:
		return KindInvalidInput
	case unix.EINTR:
		return KindInterrupted
	case unix.EAGAIN:
		return KindWouldBlock
	case unix.EPIPE:
		return KindBrokenPipe
	case unix.ENOTDIR:
		return KindNotADirectory
	case unix.EISDIR:
		return KindIsADirectory
	case unix.ENOTEMPTY:
		return KindDirectoryNotEmpty
	case unix.ENOSYS, unix.EOPNOTSUPP:
		return KindUnsupported
	default:
		return KindOther
	}
}

// Error is a failure of an operating system operation.
type Error struct {
	kind  Kind
	errno unix.Errno
	msg   string
}

// FromErrno returns an [Error] wrapping a raw error number.
func FromErrno(errno unix.Errno) *Error {
	return &Error{
		kind:  KindOfErrno(errno),
		errno: errno,
	}
}

// New returns an [Error] of the given [Kind] with a descriptive message and
// no error number.
func New(kind Kind, msg string) *Error {
	return &Error{
		kind: kind,
		msg:  msg,
	}
}

// Error returns the errno text with its number, or the message of an error
// built by [New].
func (e *Error) Error() string {
	if e.errno != 0 {
		return fmt.Sprintf("%s (os error %d)", e.errno.Error(), int(e.errno))
	}

	return e.msg
}

// Kind returns the portable classification of the error.
func (e *Error) Kind() Kind {
	return e.kind
}

// Errno returns the raw error number, if the error carries one.
func (e *Error) Errno() (unix.Errno, bool) {
	return e.errno, e.errno != 0
}

// Unwrap returns the raw error number so [errors.Is] matches both
// [unix.Errno] values and the [fs] sentinels they map to.
func (e *Error) Unwrap() error {
	if e.errno != 0 {
		return e.errno
	}

	return nil
}

// Is matches errors without an error number against the [fs] and [errors]
// sentinels of their kind.
func (e *Error) Is(target error) bool {
	if e.errno != 0 {
		return false
	}

	switch e.kind { //nolint:exhaustive
	case KindInvalidInput:
		return target == fs.ErrInvalid
	case KindUnsupported:
		return target == errors.ErrUnsupported
	case KindNotFound:
		return target == fs.ErrNotExist
	case KindAlreadyExists:
		return target == fs.ErrExist
	case KindPermissionDenied:
		return target == fs.ErrPermission
	default:
		return false
	}
}

// KindOf returns the [Kind] of any error, [KindOther] if it is not an
// [Error] or a [unix.Errno].
func KindOf(err error) Kind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.kind
	}

	var errno unix.Errno
	if errors.As(err, &errno) {
		return KindOfErrno(errno)
	}

	return KindOther
}

// ErrnoOf returns the raw error number carried by err, if any.
func ErrnoOf(err error) (unix.Errno, bool) {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return errno, true
	}

	return 0, false
}
