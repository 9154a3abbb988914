package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"jmssh/backend"
	"jmssh/backend/internal/config"
)

// ExitError 让命令以指定的退出码结束，不再打印错误信息
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// env 是命令运行时依赖的外部环境，测试中可以替换
type env struct {
	loadSettings func() (config.Settings, error)
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer
	// readPassword 从终端无回显读取密码；stdin 不是终端时为 nil
	readPassword func(prompt string) (string, error)
	version      string
}

func defaultEnv(version string) *env {
	return &env{
		loadSettings: config.Load,
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		readPassword: terminalPasswordReader(os.Stdin, os.Stderr),
		version:      version,
	}
}

// Execute 运行命令行并返回进程退出码
func Execute(version string) int {
	return run(defaultEnv(version), os.Args[1:])
}

func run(e *env, args []string) int {
	root := newRootCmd(e)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(e.stderr, "jmssh: %v\n", err)
	return 1
}

func newRootCmd(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jmssh",
		Short: "Manage SSH profiles and connect through jump chains",
		Long: `jmssh stores named SSH connection profiles, including multi-hop jump
chains, and connects through them with the system ssh client.

Data lives in $JMSSH_DATA_DIR (default: the user config dir).`,
		Version:       e.version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetIn(e.stdin)
	rootCmd.SetOut(e.stdout)
	rootCmd.SetErr(e.stderr)

	rootCmd.AddCommand(
		newConnectCmd(e),
		newProfileCmd(e),
		newPasswordCmd(e),
		newInitCmd(e),
	)
	return rootCmd
}

// withApp 加载配置、启动 App，执行 fn 后关闭
func withApp(cmd *cobra.Command, e *env, fn func(ctx context.Context, app *backend.App) error) error {
	settings, err := e.loadSettings()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app := backend.NewApp(settings)
	app.Stdout = cmd.OutOrStdout()
	if err := app.Startup(ctx); err != nil {
		app.Shutdown(ctx)
		return err
	}
	defer app.Shutdown(ctx)
	return fn(ctx, app)
}

// completeLabels 为第一个位置参数补全 profile label
func completeLabels(e *env) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var labels []string
		err := withApp(cmd, e, func(ctx context.Context, app *backend.App) error {
			var err error
			labels, err = app.Profiles.Labels(ctx)
			return err
		})
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return labels, cobra.ShellCompDirectiveNoFileComp
	}
}
