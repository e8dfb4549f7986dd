// Package integrity checksums files with BLAKE3 and copies them with an
// end-to-end verification of the written data.
package integrity

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/desertwitch/rawos/internal/filesystem"
	"github.com/desertwitch/rawos/internal/fsmeta"
	"github.com/desertwitch/rawos/internal/openopts"
	"github.com/zeebo/blake3"
)

// TempSuffix is appended to the destination while a transfer is running.
const TempSuffix = ".rawos"

type fsProvider interface {
	Open(path string, opts *openopts.OpenOptions) (*filesystem.File, error)
	OpenRead(path string) (*filesystem.File, error)
	Stat(path string) (fsmeta.FileAttr, error)
	SetPermissions(path string, perm fsmeta.FilePermissions) error
	Rename(oldpath, newpath string) error
	Unlink(path string) error
}

// Handler checksums and transfers files with BLAKE3 verification.
type Handler struct {
	FSOps fsProvider
}

// NewHandler returns a pointer to a new integrity [Handler].
func NewHandler(fsOps fsProvider) *Handler {
	return &Handler{
		FSOps: fsOps,
	}
}

//nolint:containedctx
type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	select {
	case <-cr.ctx.Done():
		return 0, context.Canceled
	default:
		return cr.reader.Read(p)
	}
}

// Checksum returns the hex encoded BLAKE3 digest of the file at path.
func (h *Handler) Checksum(ctx context.Context, path string) (string, error) {
	f, err := h.FSOps.OpenRead(path)
	if err != nil {
		return "", fmt.Errorf("(integrity-checksum) failed to open %s: %w", path, err)
	}
	defer f.Close()

	hasher := blake3.New()

	if _, err := io.Copy(hasher, &contextReader{ctx: ctx, reader: f}); err != nil {
		return "", fmt.Errorf("(integrity-checksum) failed to hash %s: %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Verify compares the contents of two files by their checksums.
func (h *Handler) Verify(ctx context.Context, a, b string) error {
	sumA, err := h.Checksum(ctx, a)
	if err != nil {
		return err
	}

	sumB, err := h.Checksum(ctx, b)
	if err != nil {
		return err
	}

	if sumA != sumB {
		return fmt.Errorf("%w: %s (%s) != %s (%s)", ErrHashMismatch, sumA, a, sumB, b)
	}

	return nil
}

// Transfer copies the regular file from to the path to. The data goes to a
// temporary file next to the destination first, which is synced, read back
// and compared against the checksum of the source before it is renamed into
// place. A failed or canceled transfer leaves no temporary file behind.
func (h *Handler) Transfer(ctx context.Context, from, to string) (int64, error) {
	var transferComplete bool

	attr, err := h.FSOps.Stat(from)
	if err != nil || !attr.FileType().IsFile() {
		return 0, filesystem.ErrNotRegularFile
	}

	srcFile, err := h.FSOps.OpenRead(from)
	if err != nil {
		return 0, fmt.Errorf("(integrity-transfer) failed to open source file: %w", err)
	}
	defer srcFile.Close()

	tmpPath := to + TempSuffix

	dstFile, err := h.FSOps.Open(tmpPath, openopts.New().Write(true).CreateNew(true).Mode(0o600))
	if err != nil {
		return 0, fmt.Errorf("(integrity-transfer) failed to open destination file %s: %w", tmpPath, err)
	}
	defer dstFile.Close()

	// Only a temporary file created by this call is removed.
	defer func() {
		if !transferComplete {
			h.FSOps.Unlink(tmpPath) //nolint:errcheck
		}
	}()

	srcHasher := blake3.New()

	ctxReader := &contextReader{
		ctx:    ctx,
		reader: io.TeeReader(srcFile, srcHasher),
	}

	n, err := io.Copy(dstFile, ctxReader)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return n, fmt.Errorf("(integrity-transfer) transfer canceled: %w", err)
		}

		return n, fmt.Errorf("(integrity-transfer) failed to copy file: %w", err)
	}

	if err := dstFile.Datasync(); err != nil {
		return n, fmt.Errorf("(integrity-transfer) failed to sync destination: %w", err)
	}

	srcChecksum := hex.EncodeToString(srcHasher.Sum(nil))

	dstChecksum, err := h.Checksum(ctx, tmpPath)
	if err != nil {
		return n, err
	}

	if srcChecksum != dstChecksum {
		return n, fmt.Errorf("%w: %s (src) != %s (dst)", ErrHashMismatch, srcChecksum, dstChecksum)
	}

	if err := h.FSOps.SetPermissions(tmpPath, attr.Perm()); err != nil {
		return n, fmt.Errorf("(integrity-transfer) failed to set permissions: %w", err)
	}

	if err := h.FSOps.Rename(tmpPath, to); err != nil {
		return n, fmt.Errorf("(integrity-transfer) failed to rename temporary file to destination file: %w", err)
	}

	transferComplete = true

	slog.Debug("Transferred file",
		"from", from,
		"to", to,
		"bytes", n,
		"blake3", srcChecksum,
	)

	return n, nil
}
