package backend

import (
	"context"
	"io"
	"os"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"jmssh/backend/internal/audit"
	"jmssh/backend/internal/config"
	"jmssh/backend/internal/credential"
	"jmssh/backend/internal/sshmanager"
	"jmssh/backend/internal/store"
	"jmssh/backend/pkg/termlog"
	"jmssh/backend/service/passwords"
	"jmssh/backend/service/profiles"
	"jmssh/backend/service/sshgate"
)

var logger = loggo.GetLogger("jmssh.app")

// App 持有一次命令执行所需的全部服务
type App struct {
	ctx      context.Context
	settings config.Settings

	store   *store.Store
	logFile io.Closer

	// Stdout 接收 connect --dry-run 输出的命令行
	Stdout io.Writer

	Profiles  *profiles.Service
	Passwords *passwords.Service
	Gate      *sshgate.Service
}

// NewApp creates a new App application struct
func NewApp(settings config.Settings) *App {
	return &App{settings: settings, Stdout: os.Stdout}
}

func (a *App) Ctx() context.Context {
	return a.ctx
}

func (a *App) Settings() config.Settings {
	return a.settings
}

// IsDebug 日志级别为 DEBUG 或 TRACE 时为 true
func (a *App) IsDebug() bool {
	lvl, ok := loggo.ParseLevel(a.settings.LogLevel)
	return ok && lvl != loggo.UNSPECIFIED && lvl <= loggo.DEBUG
}

// Startup 初始化日志、数据库和各个服务
func (a *App) Startup(ctx context.Context) error {
	a.ctx = ctx

	logFile, err := termlog.Setup(os.Stderr, a.settings.NoColor, a.settings.LogLevel, config.ExpandHome(a.settings.LogFile))
	if err != nil {
		return errors.Annotate(err, "setup logging")
	}
	a.logFile = logFile

	if err := os.MkdirAll(a.settings.DataDir, 0o700); err != nil {
		return errors.Annotate(err, "create data directory")
	}
	logger.Debugf("data dir: %s, database: %s", a.settings.DataDir, a.settings.DatabasePath)

	a.store, err = store.Open(a.settings.DatabasePath, a.IsDebug())
	if err != nil {
		return errors.Annotatef(err, "open database %s", a.settings.DatabasePath)
	}

	var creds credential.Store = credential.NoopStore{}
	if a.settings.Keyring {
		creds = credential.NewKeyringStore(a.settings.KeyringService)
	} else {
		logger.Debugf("keyring disabled, stored passwords are not used")
	}

	var auditLog *audit.Log
	if a.settings.AuditEnabled() {
		auditLog = audit.New(config.ExpandHome(a.settings.AuditLog))
	}

	launcher := sshmanager.NewLauncher(a.settings.SSHBin, a.settings.SSHPassBin)

	a.Profiles = profiles.NewService(a.store, creds)
	a.Passwords = passwords.NewService(a.store, creds)
	a.Gate = sshgate.NewService(a.store, creds, launcher, sshgate.Options{
		SSHBin:     a.settings.SSHBin,
		SSHPassBin: a.settings.SSHPassBin,
		Audit:      auditLog,
		Out:        a.Stdout,
	})
	return nil
}

// DatabasePath 返回正在使用的数据库文件
func (a *App) DatabasePath() string {
	return a.settings.DatabasePath
}

// Shutdown 关闭数据库和日志文件
func (a *App) Shutdown(ctx context.Context) {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Warningf("close database: %v", err)
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
