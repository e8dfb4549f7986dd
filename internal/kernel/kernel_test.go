package kernel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// TestLinux_Success_FileRoundtrip tests the calls against a real temporary file.
func TestLinux_Success_FileRoundtrip(t *testing.T) {
	t.Parallel()

	k := Default
	path := filepath.Join(t.TempDir(), "data")

	fd := k.Openat(AtFdCwd, path, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL|unix.O_CLOEXEC, 0o600)
	require.GreaterOrEqual(t, fd, int64(0))
	defer k.Close(int(fd))

	assert.Equal(t, int64(5), k.Write(int(fd), []byte("hello")))
	assert.Equal(t, int64(0), k.Lseek(int(fd), 0, unix.SEEK_SET))

	buf := make([]byte, 16)
	assert.Equal(t, int64(5), k.Read(int(fd), buf))
	assert.Equal(t, "hello", string(buf[:5]))

	assert.Equal(t, int64(3), k.Pread64(int(fd), buf, 2))
	assert.Equal(t, "llo", string(buf[:3]))

	var st unix.Stat_t
	require.Equal(t, int64(0), k.Fstat(int(fd), &st))
	assert.Equal(t, int64(5), st.Size)
	assert.Equal(t, uint32(unix.S_IFREG), st.Mode&unix.S_IFMT)

	assert.Equal(t, int64(0), k.Ftruncate(int(fd), 2))
	assert.Equal(t, int64(0), k.Fsync(int(fd)))
	assert.Equal(t, int64(0), k.Fdatasync(int(fd)))

	require.Equal(t, int64(0), k.Fstatat(AtFdCwd, path, &st, 0))
	assert.Equal(t, int64(2), st.Size)

	assert.Equal(t, int64(unix.FD_CLOEXEC), k.Fcntl(int(fd), unix.F_GETFD, 0))
}

// TestLinux_Fail_Errno tests failures come back as negated error numbers.
func TestLinux_Fail_Errno(t *testing.T) {
	t.Parallel()

	k := Default
	dir := t.TempDir()

	assert.Equal(t, -int64(unix.ENOENT), k.Openat(AtFdCwd, filepath.Join(dir, "missing"), unix.O_RDONLY, 0))
	assert.Equal(t, -int64(unix.EINVAL), k.Openat(AtFdCwd, "nul\x00byte", unix.O_RDONLY, 0))
	assert.Equal(t, -int64(unix.EBADF), k.Close(-1))
	assert.Equal(t, -int64(unix.EEXIST), k.Mkdirat(AtFdCwd, dir, 0o700))
}

// TestLinux_Success_Directories tests the path manipulating calls.
func TestLinux_Success_Directories(t *testing.T) {
	t.Parallel()

	k := Default
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")

	require.Equal(t, int64(0), k.Mkdirat(AtFdCwd, sub, 0o700))
	require.Equal(t, int64(0), k.Symlinkat("sub", AtFdCwd, filepath.Join(dir, "link")))

	buf := make([]byte, 64)
	n := k.Readlinkat(AtFdCwd, filepath.Join(dir, "link"), buf)
	require.Equal(t, int64(3), n)
	assert.Equal(t, "sub", string(buf[:n]))

	require.Equal(t, int64(0), k.Renameat2(AtFdCwd, filepath.Join(dir, "link"), AtFdCwd, filepath.Join(dir, "moved"), 0))
	require.Equal(t, int64(0), k.Linkat(AtFdCwd, filepath.Join(dir, "moved"), AtFdCwd, filepath.Join(dir, "hard"), 0))
	require.Equal(t, int64(0), k.Fchmodat(AtFdCwd, sub, 0o750))

	fd := k.Openat(AtFdCwd, dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	require.GreaterOrEqual(t, fd, int64(0))
	defer k.Close(int(fd))

	dup := k.Dup(int(fd))
	require.GreaterOrEqual(t, dup, int64(0))
	assert.Equal(t, int64(0), k.Close(int(dup)))

	dents := make([]byte, 4096)
	assert.Positive(t, k.Getdents64(int(fd), dents))

	assert.Equal(t, -int64(unix.ENOTEMPTY), k.Unlinkat(AtFdCwd, dir, unix.AT_REMOVEDIR))
	assert.Equal(t, int64(0), k.Unlinkat(AtFdCwd, filepath.Join(dir, "hard"), 0))
	assert.Equal(t, int64(0), k.Unlinkat(AtFdCwd, sub, unix.AT_REMOVEDIR))
}
