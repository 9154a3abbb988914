package config

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestLoadDefaults(t *testing.T) {
	c := qt.New(t)
	dataDir := t.TempDir()
	t.Setenv("JMSSH_DATA_DIR", dataDir)
	t.Setenv("JMSSH_LOG_LEVEL", "debug")

	cfg, err := Load()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.DataDir, qt.Equals, dataDir)
	c.Assert(cfg.DatabasePath, qt.Equals, filepath.Join(dataDir, "jmssh.sqlite"))
	c.Assert(cfg.AuditLog, qt.Equals, filepath.Join(dataDir, "access.log"))
	c.Assert(cfg.SSHBin, qt.Equals, "ssh")
	c.Assert(cfg.SSHPassBin, qt.Equals, "sshpass")
	c.Assert(cfg.KeyringService, qt.Equals, "com.jiyamira.jmssh")
	c.Assert(cfg.Keyring, qt.IsTrue)
	c.Assert(cfg.LogLevel, qt.Equals, "DEBUG")
	c.Assert(cfg.AuditEnabled(), qt.IsTrue)
}

func TestLoadOverrides(t *testing.T) {
	c := qt.New(t)
	t.Setenv("JMSSH_DATA_DIR", t.TempDir())
	t.Setenv("JMSSH_DATABASE_PATH", "/tmp/other.db")
	t.Setenv("JMSSH_KEYRING", "false")
	t.Setenv("JMSSH_AUDIT_LOG", "-")
	t.Setenv("NO_COLOR", "1")

	cfg, err := Load()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.DatabasePath, qt.Equals, "/tmp/other.db")
	c.Assert(cfg.Keyring, qt.IsFalse)
	c.Assert(cfg.AuditEnabled(), qt.IsFalse)
	c.Assert(cfg.NoColor, qt.IsTrue)
}

func TestLoadInvalidBool(t *testing.T) {
	c := qt.New(t)
	t.Setenv("JMSSH_KEYRING", "sometimes")
	_, err := Load()
	c.Assert(err, qt.ErrorMatches, `failed to load config: .*`)
}

func TestExpandHome(t *testing.T) {
	c := qt.New(t)
	home, err := os.UserHomeDir()
	c.Assert(err, qt.IsNil)
	c.Assert(ExpandHome("~/.ssh/config"), qt.Equals, filepath.Join(home, ".ssh/config"))
	c.Assert(ExpandHome("/etc/ssh"), qt.Equals, "/etc/ssh")
	c.Assert(ExpandHome("~other/x"), qt.Equals, "~other/x")
}
