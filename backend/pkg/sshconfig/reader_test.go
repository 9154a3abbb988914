package sshconfig

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleConfig = `# 公司跳板机
Host bastion
    HostName bastion.example.com
    User ops
    Port 2200

# 内网 Web 服务
Host web web-alias
    HostName 10.0.0.10
    ProxyJump bastion
    IdentityFile ~/.ssh/id_web

Host db
    HostName=10.0.0.20
    User=dbadmin
    ProxyJump bastion,web

Host *.internal !secret
    User nobody

Match host foo
    User matched

Host *
    User default-user
    Port 22
`

// TestParse_Hosts 测试解析具体主机并忽略通配符模式
func TestParse_Hosts(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var aliases []string
	for _, h := range cfg.Hosts {
		aliases = append(aliases, h.Alias)
	}
	want := []string{"bastion", "web", "web-alias", "db"}
	if !reflect.DeepEqual(aliases, want) {
		t.Fatalf("aliases = %v, want %v", aliases, want)
	}

	bastion, ok := cfg.Host("bastion")
	if !ok {
		t.Fatal("bastion not found")
	}
	if bastion.HostName != "bastion.example.com" || bastion.User != "ops" || bastion.Port != 2200 {
		t.Errorf("unexpected bastion: %+v", bastion)
	}
	if bastion.Description != "公司跳板机" {
		t.Errorf("description = %q", bastion.Description)
	}

	web, _ := cfg.Host("web")
	if web.Description != "内网 Web 服务" {
		t.Errorf("web description = %q", web.Description)
	}
	if db, _ := cfg.Host("db"); db.Description != "" {
		t.Errorf("db description = %q, want empty", db.Description)
	}
}

// TestParse_SkipsNegatedAndMatch 测试取反的主机和 Match 块不会被导入
func TestParse_SkipsNegatedAndMatch(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, ok := cfg.Host("secret"); ok {
		t.Error("negated host secret should be skipped")
	}
	for _, h := range cfg.Hosts {
		if h.User == "matched" {
			t.Errorf("Match block leaked into %s", h.Alias)
		}
	}
}

// TestParse_GlobalDefaults 测试 Host * 中的参数只填充未设置的字段
func TestParse_GlobalDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	web, _ := cfg.Host("web")
	if web.User != "default-user" {
		t.Errorf("web user = %q, want default-user", web.User)
	}
	if web.Port != 22 {
		t.Errorf("web port = %d, want 22", web.Port)
	}
	if web.IdentityFile != "~/.ssh/id_web" {
		t.Errorf("web identity = %q", web.IdentityFile)
	}

	bastion, _ := cfg.Host("bastion")
	if bastion.User != "ops" || bastion.Port != 2200 {
		t.Errorf("global should not override bastion: %+v", bastion)
	}
}

// TestParse_ProxyJump 测试 ProxyJump 拆分与 key=value 格式
func TestParse_ProxyJump(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	db, _ := cfg.Host("db")
	if db.HostName != "10.0.0.20" || db.User != "dbadmin" {
		t.Errorf("unexpected db: %+v", db)
	}
	if !reflect.DeepEqual(db.ProxyJump, []string{"bastion", "web"}) {
		t.Errorf("db jumps = %v", db.ProxyJump)
	}

	alias, _ := cfg.Host("web-alias")
	if !reflect.DeepEqual(alias.ProxyJump, []string{"bastion"}) {
		t.Errorf("web-alias jumps = %v", alias.ProxyJump)
	}

	none, err := Parse(strings.NewReader("Host direct\n  ProxyJump none\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d, _ := none.Host("direct"); len(d.ProxyJump) != 0 {
		t.Errorf("ProxyJump none should give empty chain, got %v", d.ProxyJump)
	}
}

// TestParse_HostNameDefaultsToAlias 测试没有 HostName 时使用别名
func TestParse_HostNameDefaultsToAlias(t *testing.T) {
	cfg, err := Parse(strings.NewReader("Host plain.example.org\n  User me\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	h, _ := cfg.Host("plain.example.org")
	if h.HostName != "plain.example.org" {
		t.Errorf("HostName = %q", h.HostName)
	}
}

// TestParse_MergesRepeatedAlias 测试同一别名出现在多个块中
func TestParse_MergesRepeatedAlias(t *testing.T) {
	cfg, err := Parse(strings.NewReader("Host a\n  HostName one\nHost a b\n  HostName two\n  User u\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(cfg.Hosts) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(cfg.Hosts))
	}
	a, _ := cfg.Host("a")
	if a.HostName != "one" || a.User != "u" {
		t.Errorf("unexpected a: %+v", a)
	}
}

// TestParse_InvalidPort 测试无效端口返回带主机别名的错误
func TestParse_InvalidPort(t *testing.T) {
	_, err := Parse(strings.NewReader("Host x\n  Port abc\n"))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cfgErr.Alias != "x" {
		t.Errorf("alias = %q, want x", cfgErr.Alias)
	}
}

// TestLoad_File 测试从文件加载
func TestLoad_File(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config")
	if err := os.WriteFile(configFile, []byte(sampleConfig), 0o600); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Hosts) != 4 {
		t.Errorf("expected 4 hosts, got %d", len(cfg.Hosts))
	}

	_, err = Load(filepath.Join(tmpDir, "missing"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

// TestDirective 测试配置行关键字的提取
func TestDirective(t *testing.T) {
	tests := []struct {
		line, want string
	}{
		{"HostName example.com", "HostName"},
		{"Port=2222", "Port"},
		{"  Match host foo", "Match"},
		{"\tHost web", "Host"},
		{"# comment", ""},
		{"", ""},
		{"Compression", "Compression"},
	}
	for _, tt := range tests {
		if got := directive(tt.line); got != tt.want {
			t.Errorf("directive(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

// TestStripMatchBlocks 测试 Match 块被替换为空行，后续 Host 保留
func TestStripMatchBlocks(t *testing.T) {
	in := "Host a\n  User u\nMatch host foo\n  User m\nHost b\n  User v"
	want := "Host a\n  User u\n\n\nHost b\n  User v"
	if got := string(stripMatchBlocks([]byte(in))); got != want {
		t.Errorf("stripMatchBlocks = %q, want %q", got, want)
	}
}
