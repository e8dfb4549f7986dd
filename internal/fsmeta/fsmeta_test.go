package fsmeta

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/desertwitch/rawos/internal/oserror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// TestFileAttr_Success_Views tests the derived views of a stat record.
func TestFileAttr_Success_Views(t *testing.T) {
	t.Parallel()

	attr := FromStat(unix.Stat_t{
		Ino:  42,
		Mode: unix.S_IFREG | 0o4755,
		Size: 10240,
		Uid:  1000,
		Gid:  100,
		Mtim: unix.Timespec{Sec: 1700000000, Nsec: 500},
		Atim: unix.Timespec{Sec: 1700000100, Nsec: 0},
	})

	assert.Equal(t, uint64(10240), attr.Size())
	assert.Equal(t, uint64(42), attr.Ino())
	assert.Equal(t, uint32(1000), attr.UID())
	assert.Equal(t, uint32(100), attr.GID())
	assert.Equal(t, uint32(0o755), attr.Perm().Mode())
	assert.True(t, attr.FileType().IsFile())
	assert.False(t, attr.FileType().IsDir())
	assert.Equal(t, fs.FileMode(0o755)|fs.ModeSetuid, attr.FileMode())

	mtime, err := attr.Modified()
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1700000000, 500), mtime)

	atime, err := attr.Accessed()
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1700000100, 0), atime)
}

// TestFileAttr_Fail_Created tests creation time is always unsupported.
func TestFileAttr_Fail_Created(t *testing.T) {
	t.Parallel()

	_, err := FromStat(unix.Stat_t{}).Created()

	require.Error(t, err)
	assert.Equal(t, oserror.KindUnsupported, oserror.KindOf(err))
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
	assert.Contains(t, err.Error(), "not available on this platform")
}

// TestFilePermissions_Success_Readonly tests toggling all write bits together.
func TestFilePermissions_Success_Readonly(t *testing.T) {
	t.Parallel()

	perm := FromMode(0o644)
	assert.False(t, perm.Readonly())

	perm.SetReadonly(true)
	assert.True(t, perm.Readonly())
	assert.Equal(t, uint32(0o444), perm.Mode())

	perm.SetReadonly(false)
	assert.False(t, perm.Readonly())
	assert.Equal(t, uint32(0o666), perm.Mode())

	assert.True(t, FromMode(0o555).Readonly())
	assert.False(t, FromMode(0o502).Readonly())
	assert.Equal(t, uint32(0o777), FromMode(unix.S_IFDIR|0o777).Mode())
}

// TestFileType_Success_Classification tests format mask comparisons.
func TestFileType_Success_Classification(t *testing.T) {
	t.Parallel()

	type testCase struct {
		mode  uint32
		check func(FileType) bool
		name  string
	}

	for _, tc := range []testCase{
		{unix.S_IFREG | 0o644, FileType.IsFile, "file"},
		{unix.S_IFDIR | 0o755, FileType.IsDir, "directory"},
		{unix.S_IFLNK | 0o777, FileType.IsSymlink, "symlink"},
		{unix.S_IFCHR, FileType.IsCharDevice, "char device"},
		{unix.S_IFBLK, FileType.IsBlockDevice, "block device"},
		{unix.S_IFIFO, FileType.IsFIFO, "fifo"},
		{unix.S_IFSOCK, FileType.IsSocket, "socket"},
	} {
		ft := FileTypeFromMode(tc.mode)
		assert.True(t, tc.check(ft), tc.name)
		assert.Equal(t, tc.name, ft.String())
	}

	// S_IFSOCK shares bits with S_IFREG and S_IFDIR, so the mask matters.
	sock := FileTypeFromMode(unix.S_IFSOCK)
	assert.False(t, sock.IsFile())
	assert.False(t, sock.IsDir())
	assert.False(t, sock.IsSymlink())
}

// TestFileTypeFromDirent_Success tests inline type hints map to formats.
func TestFileTypeFromDirent_Success(t *testing.T) {
	t.Parallel()

	ft, ok := FileTypeFromDirent(unix.DT_DIR)
	require.True(t, ok)
	assert.True(t, ft.IsDir())

	ft, ok = FileTypeFromDirent(unix.DT_LNK)
	require.True(t, ok)
	assert.True(t, ft.IsSymlink())

	_, ok = FileTypeFromDirent(unix.DT_UNKNOWN)
	assert.False(t, ok)
}
