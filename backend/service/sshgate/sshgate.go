package sshgate

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"jmssh/backend/internal/audit"
	"jmssh/backend/internal/credential"
	"jmssh/backend/internal/route"
	"jmssh/backend/internal/sshmanager"
	"jmssh/backend/internal/types"
)

var logger = loggo.GetLogger("jmssh.sshgate")

// Runner 运行 ssh 客户端，生产环境中是 *sshmanager.Launcher
type Runner interface {
	Run(ctx context.Context, args []string, password string) (sshmanager.ExitStatus, error)
	UsesSSHPass(password string) bool
}

// Service 封装了 connect 的完整流程：解析跳板链、查询密码、拼装参数、启动 ssh
type Service struct {
	reader     route.Reader
	resolve    func(context.Context, route.Reader, types.ConnectInput) (types.ConnectPlan, error)
	creds      credential.Store
	runner     Runner
	audit      *audit.Log
	sshBin     string
	sshpassBin string
	out        io.Writer
}

// Options 是 NewService 的可选参数
type Options struct {
	SSHBin     string
	SSHPassBin string
	// Audit 为 nil 时不写访问日志
	Audit *audit.Log
	// Out 用于输出 --dry-run 的命令行
	Out io.Writer
}

// NewService 是 SSHGate 服务的构造函数
func NewService(reader route.Reader, creds credential.Store, runner Runner, opts Options) *Service {
	if opts.SSHBin == "" {
		opts.SSHBin = "ssh"
	}
	if opts.SSHPassBin == "" {
		opts.SSHPassBin = "sshpass"
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Service{
		reader:     reader,
		resolve:    route.Resolve,
		creds:      creds,
		runner:     runner,
		audit:      opts.Audit,
		sshBin:     opts.SSHBin,
		sshpassBin: opts.SSHPassBin,
		out:        opts.Out,
	}
}

// ConnectRequest 是一次 connect 调用
type ConnectRequest struct {
	Input  types.ConnectInput
	DryRun bool
}

// ConnectResult 描述一次 connect 的结果
type ConnectResult struct {
	Plan    types.ConnectPlan
	Args    []string
	Command string
	Status  sshmanager.ExitStatus
	DryRun  bool
}

// Connect 解析目标并在前台启动 ssh，阻塞到 ssh 退出。
// ssh 非零退出不是错误，退出码在 Status 中；DryRun 时只输出命令不启动。
func (s *Service) Connect(ctx context.Context, req ConnectRequest) (ConnectResult, error) {
	plan, err := s.resolve(ctx, s.reader, req.Input)
	if err != nil {
		return ConnectResult{}, err
	}
	target, ok := plan.Target()
	if !ok {
		return ConnectResult{}, types.ErrEmptyPlan
	}

	cred, err := credential.Resolve(s.creds, plan)
	if err != nil {
		return ConnectResult{Plan: plan}, errors.Trace(err)
	}
	if hop, ok := credential.PasswordHop(plan); ok && !cred.Found {
		logger.Infof("no stored password for %s, ssh will prompt", hop.Label)
	}

	args := sshmanager.BuildArgs(plan)
	result := ConnectResult{
		Plan:    plan,
		Args:    args,
		Command: sshmanager.FormatCommand(s.sshBin, args, s.sshpassBin, s.runner.UsesSSHPass(cred.Password)),
		DryRun:  req.DryRun,
	}

	logger.Infof("%s", Describe(plan))
	logger.Infof("exec: %s", result.Command)

	if req.DryRun {
		fmt.Fprintln(s.out, result.Command)
		return result, nil
	}

	sess := s.audit.ConnectStart(plan)
	status, err := s.runner.Run(ctx, args, cred.Password)
	s.audit.ConnectFinish(sess, status.Code, status.Signal, err)
	if err != nil {
		return result, err
	}
	result.Status = status

	if !status.Success() {
		logger.Debugf("connection to %s ended with %+v", target.Label, status)
	}
	return result, nil
}

// Describe 返回 "connecting to X via A, B" 形式的描述
func Describe(plan types.ConnectPlan) string {
	target, ok := plan.Target()
	if !ok {
		return "empty connect plan"
	}
	msg := fmt.Sprintf("connecting to %s (%s)", target.Label, target.Endpoint())
	bastions := plan.Bastions()
	if len(bastions) == 0 {
		return msg
	}
	via := make([]string, 0, len(bastions))
	for _, h := range bastions {
		via = append(via, h.Label)
	}
	return msg + " via " + strings.Join(via, ", ")
}
