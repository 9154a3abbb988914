package sshmanager

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/juju/loggo"

	"jmssh/backend/internal/types"
)

var logger = loggo.GetLogger("jmssh.sshmanager")

// ExitStatus 是 ssh 子进程的退出结果
type ExitStatus struct {
	Code     int
	Signaled bool
	Signal   string
}

// Success 子进程是否以 0 退出
func (s ExitStatus) Success() bool {
	return s.Code == 0 && !s.Signaled
}

// Launcher 在前台运行系统 ssh 客户端，继承当前终端
type Launcher struct {
	SSHBin     string
	SSHPassBin string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	lookPath func(file string) (string, error)
}

// NewLauncher 创建使用当前进程标准输入输出的 Launcher
func NewLauncher(sshBin, sshpassBin string) *Launcher {
	if sshBin == "" {
		sshBin = "ssh"
	}
	if sshpassBin == "" {
		sshpassBin = "sshpass"
	}
	return &Launcher{
		SSHBin:     sshBin,
		SSHPassBin: sshpassBin,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		lookPath:   exec.LookPath,
	}
}

// UsesSSHPass 判断给定密码时是否会经由 sshpass 启动
func (l *Launcher) UsesSSHPass(password string) bool {
	if password == "" || !sshpassSupported {
		return false
	}
	_, err := l.findPath(l.SSHPassBin)
	return err == nil
}

// Run 启动 ssh 并阻塞到它退出。
// password 非空时（非 Windows）通过 sshpass -p 传入；找不到 sshpass 时记录警告并直接运行 ssh。
// 子进程非零退出或被信号终止不算错误，结果在 ExitStatus 中；只有无法启动才返回 LaunchError。
func (l *Launcher) Run(ctx context.Context, args []string, password string) (ExitStatus, error) {
	bin := l.SSHBin
	argv := args

	if password != "" {
		if !sshpassSupported {
			logger.Warningf("password login via sshpass is not supported on this platform, ssh will prompt")
		} else if path, err := l.findPath(l.SSHPassBin); err != nil {
			logger.Warningf("%s not found, falling back to plain ssh (you may be prompted for the password)", l.SSHPassBin)
		} else {
			bin = path
			argv = append([]string{"-p", password, l.SSHBin}, args...)
		}
	}

	cmd := exec.CommandContext(ctx, bin, argv...)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	err := cmd.Run()
	if err == nil {
		logger.Infof("ssh exited with status 0")
		return ExitStatus{}, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return ExitStatus{}, &types.LaunchError{Bin: bin, Err: err}
	}

	if sig, ok := signalOf(exitErr.ProcessState); ok {
		logger.Errorf("ssh terminated by signal %s", sig)
		return ExitStatus{Code: exitErr.ExitCode(), Signaled: true, Signal: sig}, nil
	}
	code := exitErr.ExitCode()
	logger.Errorf("ssh exited with status %d", code)
	return ExitStatus{Code: code}, nil
}

func (l *Launcher) findPath(file string) (string, error) {
	if l.lookPath == nil {
		return exec.LookPath(file)
	}
	return l.lookPath(file)
}
