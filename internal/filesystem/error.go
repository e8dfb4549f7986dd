package filesystem

import "github.com/desertwitch/rawos/internal/oserror"

var (
	// ErrNulByte is an error that occurs when a path handed to the kernel
	// contains an interior NUL byte and cannot be passed as a C string.
	ErrNulByte = oserror.New(oserror.KindInvalidInput, "data provided contains a nul byte")

	// ErrNotRegularFile is an error that occurs when the source of a copy
	// does not exist or is not a regular file.
	ErrNotRegularFile = oserror.New(oserror.KindInvalidInput, "the source path is not an existing regular file")

	// ErrInvalidWhence is an error that occurs when a seek is requested
	// relative to an unknown origin.
	ErrInvalidWhence = oserror.New(oserror.KindInvalidInput, "invalid seek whence")

	// ErrRecursiveRemoval is returned by [Handler.RemoveDirAll].
	ErrRecursiveRemoval = oserror.New(oserror.KindUnsupported, "recursive directory removal is not supported")

	// ErrCanonicalize is returned by [Handler.Canonicalize].
	ErrCanonicalize = oserror.New(oserror.KindUnsupported, "path canonicalization is not supported")
)
