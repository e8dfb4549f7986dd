//go:build linux && (amd64 || arm64 || riscv64)

// Package kernel issues raw Linux system calls. Every method reports its
// result in the kernel's own convention: a value in [-[MaxErrno], -1] is a
// negated error number, anything else is the successful result.
package kernel

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MaxErrno is the largest error number the kernel encodes into a return value.
const MaxErrno = 4095

// AtFdCwd makes the *at family of calls resolve relative paths against the
// current working directory.
const AtFdCwd = unix.AT_FDCWD

// Default is the process-wide [Linux] kernel.
//
//nolint:gochecknoglobals
var Default = &Linux{}

//nolint:gochecknoglobals
var zero uintptr

// Linux is an implementation issuing raw Linux system calls.
type Linux struct{}

func ret(r1 uintptr, errno unix.Errno) int64 {
	if errno != 0 {
		return -int64(errno)
	}

	return int64(r1)
}

func errnoRet(err error) int64 {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return -int64(errno)
	}

	return -int64(unix.EINVAL)
}

func bufPtr(p []byte) unsafe.Pointer {
	if len(p) == 0 {
		return unsafe.Pointer(&zero)
	}

	return unsafe.Pointer(&p[0])
}

// Read wraps around read(2).
func (*Linux) Read(fd int, p []byte) int64 {
	r1, _, e := unix.Syscall(unix.SYS_READ, uintptr(fd), uintptr(bufPtr(p)), uintptr(len(p)))

	return ret(r1, e)
}

// Write wraps around write(2).
func (*Linux) Write(fd int, p []byte) int64 {
	r1, _, e := unix.Syscall(unix.SYS_WRITE, uintptr(fd), uintptr(bufPtr(p)), uintptr(len(p)))

	return ret(r1, e)
}

// Pread64 wraps around pread64(2).
func (*Linux) Pread64(fd int, p []byte, offset int64) int64 {
	r1, _, e := unix.Syscall6(unix.SYS_PREAD64, uintptr(fd), uintptr(bufPtr(p)), uintptr(len(p)), uintptr(offset), 0, 0)

	return ret(r1, e)
}

// Pwrite64 wraps around pwrite64(2).
func (*Linux) Pwrite64(fd int, p []byte, offset int64) int64 {
	r1, _, e := unix.Syscall6(unix.SYS_PWRITE64, uintptr(fd), uintptr(bufPtr(p)), uintptr(len(p)), uintptr(offset), 0, 0)

	return ret(r1, e)
}

// Openat wraps around openat(2).
func (*Linux) Openat(dirfd int, path string, flags int, mode uint32) int64 {
	p, err := unix.BytePtrFromString(path)
	if err != nil {
		return errnoRet(err)
	}
	r1, _, e := unix.Syscall6(unix.SYS_OPENAT, uintptr(dirfd), uintptr(unsafe.Pointer(p)), uintptr(flags), uintptr(mode), 0, 0)

	return ret(r1, e)
}

// Close wraps around close(2).
func (*Linux) Close(fd int) int64 {
	r1, _, e := unix.Syscall(unix.SYS_CLOSE, uintptr(fd), 0, 0)

	return ret(r1, e)
}

// Lseek wraps around lseek(2).
func (*Linux) Lseek(fd int, offset int64, whence int) int64 {
	r1, _, e := unix.Syscall(unix.SYS_LSEEK, uintptr(fd), uintptr(offset), uintptr(whence))

	return ret(r1, e)
}

// Fstat wraps around fstat(2).
func (*Linux) Fstat(fd int, st *unix.Stat_t) int64 {
	r1, _, e := unix.Syscall(unix.SYS_FSTAT, uintptr(fd), uintptr(unsafe.Pointer(st)), 0)

	return ret(r1, e)
}

// Fstatat wraps around newfstatat(2).
func (*Linux) Fstatat(dirfd int, path string, st *unix.Stat_t, flags int) int64 {
	p, err := unix.BytePtrFromString(path)
	if err != nil {
		return errnoRet(err)
	}
	r1, _, e := unix.Syscall6(sysFstatat, uintptr(dirfd), uintptr(unsafe.Pointer(p)), uintptr(unsafe.Pointer(st)), uintptr(flags), 0, 0)

	return ret(r1, e)
}

// Fsync wraps around fsync(2).
func (*Linux) Fsync(fd int) int64 {
	r1, _, e := unix.Syscall(unix.SYS_FSYNC, uintptr(fd), 0, 0)

	return ret(r1, e)
}

// Fdatasync wraps around fdatasync(2).
func (*Linux) Fdatasync(fd int) int64 {
	r1, _, e := unix.Syscall(unix.SYS_FDATASYNC, uintptr(fd), 0, 0)

	return ret(r1, e)
}

// Ftruncate wraps around ftruncate(2).
func (*Linux) Ftruncate(fd int, length int64) int64 {
	r1, _, e := unix.Syscall(unix.SYS_FTRUNCATE, uintptr(fd), uintptr(length), 0)

	return ret(r1, e)
}

// Getdents64 wraps around getdents64(2).
func (*Linux) Getdents64(fd int, buf []byte) int64 {
	r1, _, e := unix.Syscall(unix.SYS_GETDENTS64, uintptr(fd), uintptr(bufPtr(buf)), uintptr(len(buf)))

	return ret(r1, e)
}

// Mkdirat wraps around mkdirat(2).
func (*Linux) Mkdirat(dirfd int, path string, mode uint32) int64 {
	p, err := unix.BytePtrFromString(path)
	if err != nil {
		return errnoRet(err)
	}
	r1, _, e := unix.Syscall(unix.SYS_MKDIRAT, uintptr(dirfd), uintptr(unsafe.Pointer(p)), uintptr(mode))

	return ret(r1, e)
}

// Unlinkat wraps around unlinkat(2).
func (*Linux) Unlinkat(dirfd int, path string, flags int) int64 {
	p, err := unix.BytePtrFromString(path)
	if err != nil {
		return errnoRet(err)
	}
	r1, _, e := unix.Syscall(unix.SYS_UNLINKAT, uintptr(dirfd), uintptr(unsafe.Pointer(p)), uintptr(flags))

	return ret(r1, e)
}

// Renameat2 wraps around renameat2(2).
func (*Linux) Renameat2(olddirfd int, oldpath string, newdirfd int, newpath string, flags uint) int64 {
	oldp, err := unix.BytePtrFromString(oldpath)
	if err != nil {
		return errnoRet(err)
	}
	newp, err := unix.BytePtrFromString(newpath)
	if err != nil {
		return errnoRet(err)
	}
	r1, _, e := unix.Syscall6(unix.SYS_RENAMEAT2, uintptr(olddirfd), uintptr(unsafe.Pointer(oldp)), uintptr(newdirfd), uintptr(unsafe.Pointer(newp)), uintptr(flags), 0)

	return ret(r1, e)
}

// Fchmodat wraps around fchmodat(2).
func (*Linux) Fchmodat(dirfd int, path string, mode uint32) int64 {
	p, err := unix.BytePtrFromString(path)
	if err != nil {
		return errnoRet(err)
	}
	r1, _, e := unix.Syscall(unix.SYS_FCHMODAT, uintptr(dirfd), uintptr(unsafe.Pointer(p)), uintptr(mode))

	return ret(r1, e)
}

// Readlinkat wraps around readlinkat(2).
func (*Linux) Readlinkat(dirfd int, path string, buf []byte) int64 {
	p, err := unix.BytePtrFromString(path)
	if err != nil {
		return errnoRet(err)
	}
	r1, _, e := unix.Syscall6(unix.SYS_READLINKAT, uintptr(dirfd), uintptr(unsafe.Pointer(p)), uintptr(bufPtr(buf)), uintptr(len(buf)), 0, 0)

	return ret(r1, e)
}

// Symlinkat wraps around symlinkat(2).
func (*Linux) Symlinkat(target string, newdirfd int, linkpath string) int64 {
	t, err := unix.BytePtrFromString(target)
	if err != nil {
		return errnoRet(err)
	}
	l, err := unix.BytePtrFromString(linkpath)
	if err != nil {
		return errnoRet(err)
	}
	r1, _, e := unix.Syscall(unix.SYS_SYMLINKAT, uintptr(unsafe.Pointer(t)), uintptr(newdirfd), uintptr(unsafe.Pointer(l)))

	return ret(r1, e)
}

// Linkat wraps around linkat(2).
func (*Linux) Linkat(olddirfd int, oldpath string, newdirfd int, newpath string, flags int) int64 {
	oldp, err := unix.BytePtrFromString(oldpath)
	if err != nil {
		return errnoRet(err)
	}
	newp, err := unix.BytePtrFromString(newpath)
	if err != nil {
		return errnoRet(err)
	}
	r1, _, e := unix.Syscall6(unix.SYS_LINKAT, uintptr(olddirfd), uintptr(unsafe.Pointer(oldp)), uintptr(newdirfd), uintptr(unsafe.Pointer(newp)), uintptr(flags), 0)

	return ret(r1, e)
}

// Fcntl wraps around fcntl(2) for commands taking an integer argument.
func (*Linux) Fcntl(fd int, cmd int, arg int) int64 {
	r1, _, e := unix.Syscall(unix.SYS_FCNTL, uintptr(fd), uintptr(cmd), uintptr(arg))

	return ret(r1, e)
}

// Dup wraps around dup(2).
func (*Linux) Dup(fd int) int64 {
	r1, _, e := unix.Syscall(unix.SYS_DUP, uintptr(fd), 0, 0)

	return ret(r1, e)
}

// ExitGroup wraps around exit_group(2). It does not return.
func (*Linux) ExitGroup(code int) {
	for {
		unix.RawSyscall(unix.SYS_EXIT_GROUP, uintptr(code), 0, 0)
	}
}
