//go:build linux && (arm64 || riscv64)

package kernel

import "golang.org/x/sys/unix"

// The generic syscall table names newfstatat fstatat.
const sysFstatat = unix.SYS_FSTATAT
