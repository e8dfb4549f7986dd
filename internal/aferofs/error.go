package aferofs

import "github.com/desertwitch/rawos/internal/oserror"

var (
	// ErrOwnership is returned by [Fs.Chown], ownership is never changed.
	ErrOwnership = oserror.New(oserror.KindUnsupported, "changing ownership is not supported")

	// ErrTimestamps is returned by [Fs.Chtimes], timestamps are never changed.
	ErrTimestamps = oserror.New(oserror.KindUnsupported, "changing timestamps is not supported")
)
