package fsmeta

import (
	"github.com/desertwitch/rawos/internal/cvt"
	"github.com/desertwitch/rawos/internal/kernel"
	"golang.org/x/sys/unix"
)

type statProvider interface {
	Fstat(fd int, st *unix.Stat_t) int64
	Fstatat(dirfd int, path string, st *unix.Stat_t, flags int) int64
}

// Stat looks up the metadata of path, following symbolic links.
func Stat(k statProvider, path string) (FileAttr, error) {
	var st unix.Stat_t
	if _, err := cvt.Cvt[int](k.Fstatat(kernel.AtFdCwd, path, &st, 0)); err != nil {
		return FileAttr{}, err
	}

	return FileAttr{stat: st}, nil
}

// Lstat looks up the metadata of path without following a final symbolic
// link.
func Lstat(k statProvider, path string) (FileAttr, error) {
	var st unix.Stat_t
	if _, err := cvt.Cvt[int](k.Fstatat(kernel.AtFdCwd, path, &st, unix.AT_SYMLINK_NOFOLLOW)); err != nil {
		return FileAttr{}, err
	}

	return FileAttr{stat: st}, nil
}

// Fstat looks up the metadata of an open descriptor.
func Fstat(k statProvider, fd int) (FileAttr, error) {
	var st unix.Stat_t
	if _, err := cvt.Cvt[int](k.Fstat(fd, &st)); err != nil {
		return FileAttr{}, err
	}

	return FileAttr{stat: st}, nil
}

// LstatAt looks up the metadata of name relative to the open directory
// dirfd, without following a final symbolic link.
func LstatAt(k statProvider, dirfd int, name string) (FileAttr, error) {
	var st unix.Stat_t
	if _, err := cvt.Cvt[int](k.Fstatat(dirfd, name, &st, unix.AT_SYMLINK_NOFOLLOW)); err != nil {
		return FileAttr{}, err
	}

	return FileAttr{stat: st}, nil
}
