package sshconfig

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// Host 是 ~/.ssh/config 中一个具体别名的有效配置
type Host struct {
	Alias        string
	HostName     string
	User         string
	Port         int // 0 表示未设置
	IdentityFile string
	ProxyJump    []string
	Description  string // Host 行之前的注释
}

// Config 是解析后的配置，只保留能导入为 profile 的主机
type Config struct {
	Hosts []Host
}

// ConfigError 配置相关错误
type ConfigError struct {
	Op    string
	Alias string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Alias != "" {
		return fmt.Sprintf("ssh config %s (host %s): %v", e.Op, e.Alias, e.Err)
	}
	return fmt.Sprintf("ssh config %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Load 读取并解析配置文件，路径支持 ~
func Load(filename string) (*Config, error) {
	f, err := os.Open(expandHomeDir(filename))
	if err != nil {
		return nil, &ConfigError{Op: "load", Err: err}
	}
	defer f.Close()
	return Parse(f)
}

// Parse 解析配置内容。
// 含通配符或取反的 Host 模式和 Match 块会被跳过；每个字段按 ssh 的规则取第一个匹配的值，
// 因此 Host * 中的参数只填充未设置的字段。
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ConfigError{Op: "read", Err: err}
	}
	raw, err := ssh_config.DecodeBytes(stripMatchBlocks(data))
	if err != nil {
		return nil, &ConfigError{Op: "parse", Err: err}
	}

	cfg := &Config{}
	seen := map[string]bool{}
	for i, host := range raw.Hosts {
		for _, pat := range host.Patterns {
			alias := pat.String()
			// 取反的模式 String() 不带 "!"，用 Matches 排除
			if isPattern(alias) || seen[alias] || !host.Matches(alias) {
				continue
			}
			seen[alias] = true

			h, err := lookupHost(raw, alias)
			if err != nil {
				return nil, err
			}
			h.Description = hostComment(raw.Hosts, i)
			cfg.Hosts = append(cfg.Hosts, h)
		}
	}
	return cfg, nil
}

// Host 按别名查找主机
func (c *Config) Host(alias string) (Host, bool) {
	for _, h := range c.Hosts {
		if h.Alias == alias {
			return h, true
		}
	}
	return Host{}, false
}

func lookupHost(raw *ssh_config.Config, alias string) (Host, error) {
	h := Host{Alias: alias}
	get := func(key string) string {
		v, _ := raw.Get(alias, key)
		return strings.Trim(v, "\"")
	}

	h.HostName = get("HostName")
	if h.HostName == "" {
		h.HostName = alias
	}
	h.User = get("User")
	h.IdentityFile = get("IdentityFile")

	if port := get("Port"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return Host{}, &ConfigError{Op: "parse", Alias: alias, Err: fmt.Errorf("invalid port %q", port)}
		}
		h.Port = n
	}

	if jump := get("ProxyJump"); jump != "" {
		h.ProxyJump = []string{}
		if strings.EqualFold(jump, "none") {
			return h, nil
		}
		for _, hop := range strings.Split(jump, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				h.ProxyJump = append(h.ProxyJump, hop)
			}
		}
	}
	return h, nil
}

// hostComment 取紧挨在第 i 个 Host 行之前的注释。
// 解析器把这些注释挂在上一个 Host 的节点末尾，空行会截断。
func hostComment(hosts []*ssh_config.Host, i int) string {
	var lines []string
	if i > 0 {
		nodes := hosts[i-1].Nodes
		for j := len(nodes) - 1; j >= 0; j-- {
			empty, ok := nodes[j].(*ssh_config.Empty)
			if !ok {
				break
			}
			text := strings.TrimSpace(empty.Comment)
			if text == "" {
				break
			}
			lines = append([]string{text}, lines...)
		}
	}
	if len(lines) == 0 {
		return strings.TrimSpace(hosts[i].EOLComment)
	}
	return strings.Join(lines, " ")
}

// stripMatchBlocks 把 Match 块替换为空行，解析器不支持 Match
func stripMatchBlocks(data []byte) []byte {
	lines := bytes.Split(data, []byte("\n"))
	inMatch := false
	for i, line := range lines {
		switch strings.ToLower(directive(string(line))) {
		case "match":
			inMatch = true
		case "host":
			inMatch = false
		}
		if inMatch {
			lines[i] = nil
		}
	}
	return bytes.Join(lines, []byte("\n"))
}

// directive 返回一行配置的关键字，支持 key value 和 key=value
func directive(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}
	if idx := strings.IndexAny(line, " \t="); idx >= 0 {
		return line[:idx]
	}
	return line
}

func isPattern(name string) bool {
	return strings.ContainsAny(name, "*?!")
}

// expandHomeDir 展开家目录路径
func expandHomeDir(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
