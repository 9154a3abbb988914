package sshmanager

import (
	"fmt"
	"strconv"
	"strings"

	"al.essio.dev/pkg/shellescape"

	"jmssh/backend/internal/types"
)

// BuildArgs 把连接计划转换为 ssh 的参数，顺序固定为
// [-J 跳板链] [-p 端口] [-i 私钥] user@host。
// 计划为空时返回 nil，调用方应拒绝启动。
func BuildArgs(plan types.ConnectPlan) []string {
	target, ok := plan.Target()
	if !ok {
		return nil
	}

	var args []string
	if bastions := plan.Bastions(); len(bastions) > 0 {
		jumps := make([]string, 0, len(bastions))
		for _, h := range bastions {
			jumps = append(jumps, h.Endpoint())
		}
		args = append(args, "-J", strings.Join(jumps, ","))
	}

	if target.Port != types.DefaultPort {
		args = append(args, "-p", strconv.Itoa(target.Port))
	}

	if target.AuthMode == types.AuthKey && target.KeyPath != "" {
		args = append(args, "-i", target.KeyPath)
	}

	args = append(args, fmt.Sprintf("%s@%s", target.User, target.Host))
	return args
}

// FormatCommand 返回可直接粘贴到 shell 的命令行，用于日志和 --dry-run。
// withSSHPass 为 true 时密码位置只显示占位符。
func FormatCommand(sshBin string, args []string, sshpassBin string, withSSHPass bool) string {
	argv := make([]string, 0, len(args)+4)
	if withSSHPass {
		argv = append(argv, sshpassBin, "-p", "******")
	}
	argv = append(argv, sshBin)
	argv = append(argv, args...)
	return shellescape.QuoteCommand(argv)
}
