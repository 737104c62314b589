//go:build !windows

// Package process cleans up browser processes left behind by the printer.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, reaching
// the renderer and GPU children a browser leaves behind.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best effort: the launcher kills the leader itself afterwards.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
