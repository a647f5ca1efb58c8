//go:build !windows

package process

import "syscall"

// KillTree sends SIGKILL to the process group led by pid, taking the
// browser's renderer and GPU helpers down with it.
func KillTree(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	return syscall.Kill(-pid, syscall.SIGKILL)
}
