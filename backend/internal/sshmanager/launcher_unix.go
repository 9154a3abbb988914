//go:build !windows

package sshmanager

import (
	"os"
	"syscall"
)

const sshpassSupported = true

// signalOf 在 Unix 上从 WaitStatus 中取出终止子进程的信号
func signalOf(state *os.ProcessState) (string, bool) {
	if state == nil {
		return "", false
	}
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return "", false
	}
	return ws.Signal().String(), true
}
