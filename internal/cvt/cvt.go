// Package cvt translates raw system call return values into Go results.
package cvt

import (
	"github.com/desertwitch/rawos/internal/kernel"
	"github.com/desertwitch/rawos/internal/oserror"
	"golang.org/x/sys/unix"
)

// Integer is any integer type a successful system call result is
// converted to.
type Integer interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~uintptr
}

// IsErrorReturn reports whether ret lies in the range the kernel reserves for
// negated error numbers.
func IsErrorReturn(ret int64) bool {
	return ret < 0 && ret >= -kernel.MaxErrno
}

// Cvt converts a raw return value into either a result of type T or an
// [oserror.Error] carrying the error number.
func Cvt[T Integer](ret int64) (T, error) {
	if IsErrorReturn(ret) {
		return 0, oserror.FromErrno(unix.Errno(-ret))
	}

	return T(ret), nil
}

// CvtRetry calls fn until it either succeeds or fails with anything other
// than EINTR, and converts that result like [Cvt].
func CvtRetry[T Integer](fn func() int64) (T, error) {
	for {
		ret := fn()
		if ret == -int64(unix.EINTR) {
			continue
		}

		return Cvt[T](ret)
	}
}
