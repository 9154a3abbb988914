package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	appDirName = "jmssh"
	envPrefix  = "JMSSH"
)

// Settings 是 jmssh 的运行配置，全部来自环境变量（前缀 JMSSH_）
type Settings struct {
	DataDir        string `envconfig:"DATA_DIR" default:""`
	DatabasePath   string `envconfig:"DATABASE_PATH" default:""`
	SSHBin         string `envconfig:"SSH_BIN" default:"ssh"`
	SSHPassBin     string `envconfig:"SSHPASS_BIN" default:"sshpass"`
	KeyringService string `envconfig:"KEYRING_SERVICE" default:"com.jiyamira.jmssh"`
	Keyring        bool   `envconfig:"KEYRING" default:"true"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFile        string `envconfig:"LOG_FILE" default:""`
	NoColor        bool   `ignored:"true"`
	AuditLog       string `envconfig:"AUDIT_LOG" default:""`
	SSHConfigPath  string `envconfig:"SSH_CONFIG" default:"~/.ssh/config"`
}

// Load 读取环境变量并补全依赖于用户目录的默认值
func Load() (Settings, error) {
	var cfg Settings
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	// 遵循 no-color.org：只要变量存在且非空就关闭颜色
	for _, key := range []string{envPrefix + "_NO_COLOR", "NO_COLOR"} {
		if os.Getenv(key) != "" {
			cfg.NoColor = true
		}
	}
	if err := cfg.applyDefaults(); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

func (c *Settings) applyDefaults() error {
	if c.DataDir == "" {
		userConfigDir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("could not find user config dir: %w", err)
		}
		c.DataDir = filepath.Join(userConfigDir, appDirName)
	}
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDir, "jmssh.sqlite")
	}
	if c.AuditLog == "" {
		c.AuditLog = filepath.Join(c.DataDir, "access.log")
	}
	c.LogLevel = strings.ToUpper(strings.TrimSpace(c.LogLevel))
	return nil
}

// AuditEnabled 为 false 时不写 access.log
func (c Settings) AuditEnabled() bool {
	return c.AuditLog != "-"
}

// ExpandHome 展开路径开头的 ~
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
