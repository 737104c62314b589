//go:build windows

// Package process cleans up browser processes left behind by the printer.
package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup terminates pid and its child processes with taskkill.
// /F forces, /T walks the process tree.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best effort: the launcher kills the leader itself afterwards.
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
