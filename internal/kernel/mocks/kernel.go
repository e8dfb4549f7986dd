// Package mocks contains a [mock.Mock] based double of the raw kernel.
package mocks

import (
	"github.com/stretchr/testify/mock"
	"golang.org/x/sys/unix"
)

// Kernel is a mock type for the raw system call boundary. Each method
// accepts either a plain int64 return value or a function with the method's
// own signature computing it.
type Kernel struct {
	mock.Mock
}

func (_m *Kernel) int64Ret(ret mock.Arguments, fn func(any) (int64, bool)) int64 {
	if len(ret) == 0 {
		panic("no return value specified")
	}
	if r, ok := fn(ret.Get(0)); ok {
		return r
	}

	return ret.Get(0).(int64) //nolint:forcetypeassert
}

// Read provides a mock function with given fields: fd, p.
func (_m *Kernel) Read(fd int, p []byte) int64 {
	ret := _m.Called(fd, p)

	return _m.int64Ret(ret, func(v any) (int64, bool) {
		if rf, ok := v.(func(int, []byte) int64); ok {
			return rf(fd, p), true
		}

		return 0, false
	})
}

// Write provides a mock function with given fields: fd, p.
func (_m *Kernel) Write(fd int, p []byte) int64 {
	ret := _m.Called(fd, p)

	return _m.int64Ret(ret, func(v any) (int64, bool) {
		if rf, ok := v.(func(int, []byte) int64); ok {
			return rf(fd, p), true
		}

		return 0, false
	})
}

// Pread64 provides a mock function with given fields: fd, p, offset.
func (_m *Kernel) Pread64(fd int, p []byte, offset int64) int64 {
	ret := _m.Called(fd, p, offset)

	return _m.int64Ret(ret, func(v any) (int64, bool) {
		if rf, ok := v.(func(int, []byte, int64) int64); ok {
			return rf(fd, p, offset), true
		}

		return 0, false
	})
}

// Pwrite64 provides a mock function with given fields: fd, p, offset.
func (_m *Kernel) Pwrite64(fd int, p []byte, offset int64) int64 {
	ret := _m.Called(fd, p, offset)

	return _m.int64Ret(ret, func(v any) (int64, bool) {
		if rf, ok := v.(func(int, []byte, int64) int64); ok {
			return rf(fd, p, offset), true
		}

		return 0, false
	})
}

// Openat provides a mock function with given fields: dirfd, path, flags, mode.
func (_m *Kernel) Openat(dirfd int, path string, flags int, mode uint32) int64 {
	ret := _m.Called(dirfd, path, flags, mode)

	return _m.int64Ret(ret, func(v any) (int64, bool) {
		if rf, ok := v.(func(int, string, int, uint32) int64); ok {
			return rf(dirfd, path, flags, mode), true
		}

		return 0, false
	})
}

// Close provides a mock function with given fields: fd.
func (_m *Kernel) Close(fd int) int64 {
	ret := _m.Called(fd)

	return _m.int64Ret(ret, func(any) (int64, bool) { return 0, false })
}

// Lseek provides a mock function with given fields: fd, offset, whence.
func (_m *Kernel) Lseek(fd int, offset int64, whence int) int64 {
	ret := _m.Called(fd, offset, whence)

	return _m.int64Ret(ret, func(v any) (int64, bool) {
		if rf, ok := v.(func(int, int64, int) int64); ok {
			return rf(fd, offset, whence), true
		}

		return 0, false
	})
}

// Fstat provides a mock function with given fields: fd, st.
func (_m *Kernel) Fstat(fd int, st *unix.Stat_t) int64 {
	ret := _m.Called(fd, st)

	return _m.int64Ret(ret, func(v any) (int64, bool) {
		if rf, ok := v.(func(int, *unix.Stat_t) int64); ok {
			return rf(fd, st), true
		}

		return 0, false
	})
}

// Fstatat provides a mock function with given fields: dirfd, path, st, flags.
func (_m *Kernel) Fstatat(dirfd int, path string, st *unix.Stat_t, flags int) int64 {
	ret := _m.Called(dirfd, path, st, flags)

	return _m.int64Ret(ret, func(v any) (int64, bool) {
		if rf, ok := v.(func(int, string, *unix.Stat_t, int) int64); ok {
			return rf(dirfd, path, st, flags), true
		}

		return 0, false
	})
}

// Fsync provides a mock function with given fields: fd.
func (_m *Kernel) Fsync(fd int) int64 {
	ret := _m.Called(fd)

	return _m.int64Ret(ret, func(any) (int64, bool) { return 0, false })
}

// Fdatasync provides a mock function with given fields: fd.
func (_m *Kernel) Fdatasync(fd int) int64 {
	ret := _m.Called(fd)

	return _m.int64Ret(ret, func(any) (int64, bool) { return 0, false })
}

// Ftruncate provides a mock function with given fields: fd, length.
func (_m *Kernel) Ftruncate(fd int, length int64) int64 {
	ret := _m.Called(fd, length)

	return _m.int64Ret(ret, func(any) (int64, bool) { return 0, false })
}

// Getdents64 provides a mock function with given fields: fd, buf.
func (_m *Kernel) Getdents64(fd int, buf []byte) int64 {
	ret := _m.Called(fd, buf)

	return _m.int64Ret(ret, func(v any) (int64, bool) {
		if rf, ok := v.(func(int, []byte) int64); ok {
			return rf(fd, buf), true
		}

		return 0, false
	})
}

// Mkdirat provides a mock function with given fields: dirfd, path, mode.
func (_m *Kernel) Mkdirat(dirfd int, path string, mode uint32) int64 {
	ret := _m.Called(dirfd, path, mode)

	return _m.int64Ret(ret, func(any) (int64, bool) { return 0, false })
}

// Unlinkat provides a mock function with given fields: dirfd, path, flags.
func (_m *Kernel) Unlinkat(dirfd int, path string, flags int) int64 {
	ret := _m.Called(dirfd, path, flags)

	return _m.int64Ret(ret, func(any) (int64, bool) { return 0, false })
}

// Renameat2 provides a mock function with given fields: olddirfd, oldpath, newdirfd, newpath, flags.
func (_m *Kernel) Renameat2(olddirfd int, oldpath string, newdirfd int, newpath string, flags uint) int64 {
	ret := _m.Called(olddirfd, oldpath, newdirfd, newpath, flags)

	return _m.int64Ret(ret, func(any) (int64, bool) { return 0, false })
}

// Fchmodat provides a mock function with given fields: dirfd, path, mode.
func (_m *Kernel) Fchmodat(dirfd int, path string, mode uint32) int64 {
	ret := _m.Called(dirfd, path, mode)

	return _m.int64Ret(ret, func(v any) (int64, bool) {
		if rf, ok := v.(func(int, string, uint32) int64); ok {
			return rf(dirfd, path, mode), true
		}

		return 0, false
	})
}

// Readlinkat provides a mock function with given fields: dirfd, path, buf.
func (_m *Kernel) Readlinkat(dirfd int, path string, buf []byte) int64 {
	ret := _m.Called(dirfd, path, buf)

	return _m.int64Ret(ret, func(v any) (int64, bool) {
		if rf, ok := v.(func(int, string, []byte) int64); ok {
			return rf(dirfd, path, buf), true
		}

		return 0, false
	})
}

// Symlinkat provides a mock function with given fields: target, newdirfd, linkpath.
func (_m *Kernel) Symlinkat(target string, newdirfd int, linkpath string) int64 {
	ret := _m.Called(target, newdirfd, linkpath)

	return _m.int64Ret(ret, func(any) (int64, bool) { return 0, false })
}

// Linkat provides a mock function with given fields: olddirfd, oldpath, newdirfd, newpath, flags.
func (_m *Kernel) Linkat(olddirfd int, oldpath string, newdirfd int, newpath string, flags int) int64 {
	ret := _m.Called(olddirfd, oldpath, newdirfd, newpath, flags)

	return _m.int64Ret(ret, func(any) (int64, bool) { return 0, false })
}

// Fcntl provides a mock function with given fields: fd, cmd, arg.
func (_m *Kernel) Fcntl(fd int, cmd int, arg int) int64 {
	ret := _m.Called(fd, cmd, arg)

	return _m.int64Ret(ret, func(any) (int64, bool) { return 0, false })
}

// Dup provides a mock function with given fields: fd.
func (_m *Kernel) Dup(fd int) int64 {
	ret := _m.Called(fd)

	return _m.int64Ret(ret, func(any) (int64, bool) { return 0, false })
}

// ExitGroup provides a mock function with given fields: code.
func (_m *Kernel) ExitGroup(code int) {
	_m.Called(code)
}

// NewKernel creates a new instance of [Kernel]. It also registers a testing
// interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewKernel(t interface {
	mock.TestingT
	Cleanup(func())
},
) *Kernel {
	m := &Kernel{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
