package filesystem

import (
	"fmt"
	"io"
	"log/slog"
)

// Copy copies the contents and permission bits of the regular file from to
// the path to, creating or truncating it. It returns the number of bytes
// copied.
func (h *Handler) Copy(from, to string) (int64, error) {
	attr, err := h.Stat(from)
	if err != nil || !attr.FileType().IsFile() {
		return 0, ErrNotRegularFile
	}

	reader, err := h.OpenRead(from)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	writer, err := h.Create(to)
	if err != nil {
		return 0, err
	}
	defer writer.Close()

	meta, err := reader.Metadata()
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(writer, reader)
	if err != nil {
		return n, fmt.Errorf("(fs-copy) failed to copy %s to %s: %w", from, to, err)
	}

	if err := h.SetPermissions(to, meta.Perm()); err != nil {
		return n, err
	}

	if err := writer.Close(); err != nil {
		return n, fmt.Errorf("(fs-copy) failed to close %s: %w", to, err)
	}

	slog.Debug("Copied file",
		"from", from,
		"to", to,
		"bytes", n,
	)

	return n, nil
}
