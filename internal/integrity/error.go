package integrity

import "errors"

// ErrHashMismatch is an error that occurs when the checksums of the source
// and the destination of a transfer differ.
var ErrHashMismatch = errors.New("hash mismatch")
