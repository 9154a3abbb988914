//go:build windows

package sshmanager

import "os"

// Windows 上没有 sshpass，密码由 ssh 自己询问
const sshpassSupported = false

func signalOf(*os.ProcessState) (string, bool) {
	return "", false
}
