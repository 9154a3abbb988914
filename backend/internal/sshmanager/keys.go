package sshmanager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
)

// ExpandPath 展开开头的 ~ 并转换为绝对路径
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[1:])
	}
	return filepath.Abs(path)
}

// ValidateKeyFile 检查路径指向一个可解析的 SSH 私钥，返回展开后的绝对路径。
// 带口令的私钥同样接受，口令由 ssh 客户端在连接时询问。
func ValidateKeyFile(path string) (string, error) {
	abs, err := ExpandPath(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("failed to read key file: %w", err)
	}
	if _, err := ssh.ParsePrivateKey(data); err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return abs, nil
		}
		return "", fmt.Errorf("failed to parse private key %s: %w", abs, err)
	}
	return abs, nil
}
