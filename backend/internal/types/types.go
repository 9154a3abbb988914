package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// DefaultPort 未设置端口时使用的 SSH 端口
const DefaultPort = 22

// AuthMode 是 profile 的认证方式，只允许 agent / password / key 三种
type AuthMode uint8

const (
	AuthAgent AuthMode = iota
	AuthPassword
	AuthKey
)

// ParseAuthMode 在系统边界处把用户输入解析为 AuthMode（大小写不敏感，"" 和 "auto" 视为 agent）
func ParseAuthMode(s string) (AuthMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "agent":
		return AuthAgent, nil
	case "password":
		return AuthPassword, nil
	case "key":
		return AuthKey, nil
	}
	return AuthAgent, &InvalidAuthModeError{Value: s}
}

// String 返回规范化的存储形式
func (m AuthMode) String() string {
	switch m {
	case AuthAgent:
		return "agent"
	case AuthPassword:
		return "password"
	case AuthKey:
		return "key"
	}
	return fmt.Sprintf("AuthMode(%d)", uint8(m))
}

// Value 实现 driver.Valuer，数据库里只保存 String() 的结果
func (m AuthMode) Value() (driver.Value, error) {
	switch m {
	case AuthAgent, AuthPassword, AuthKey:
		return m.String(), nil
	}
	return nil, &InvalidAuthModeError{Value: m.String()}
}

// Scan 实现 sql.Scanner
func (m *AuthMode) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		s = ""
	default:
		return fmt.Errorf("cannot scan %T into AuthMode", src)
	}
	mode, err := ParseAuthMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ProfileView 是展示给用户的 profile 信息
type ProfileView struct {
	ID      uint     `json:"id"`
	Label   string   `json:"label"`
	Host    string   `json:"host"`
	User    string   `json:"user"`
	Port    int      `json:"port"`
	Mode    AuthMode `json:"mode"`
	Tags    string   `json:"tags,omitempty"`
	Note    string   `json:"note,omitempty"`
	KeyPath string   `json:"keyPath,omitempty"`
	Jumps   []string `json:"jumps,omitempty"`
}

// EditProfileInput 对应 profile add / set 的参数，nil 表示未指定
type EditProfileInput struct {
	Label   string
	Host    *string
	User    *string
	Port    *int
	Mode    *AuthMode
	Tags    *string
	Note    *string
	KeyPath *string
	// Jumps 非空时整体替换跳板链，空时保持不变
	Jumps []string
}

// ConnectInput 是 connect 的目标，ID 非空时优先于 Target
type ConnectInput struct {
	Target string
	ID     *uint
}

// ConnectHop 是跳板链中的一跳
type ConnectHop struct {
	ID       uint
	Label    string
	Host     string
	User     string
	Port     int
	AuthMode AuthMode
	KeyPath  string
}

// Endpoint 返回 user@host:port
func (h ConnectHop) Endpoint() string {
	return fmt.Sprintf("%s@%s:%d", h.User, h.Host, h.Port)
}

// ConnectPlan 从第一个跳板到最终目标，按顺序排列
type ConnectPlan struct {
	Hops []ConnectHop
}

// Target 返回最终目标，计划为空时 ok 为 false
func (p ConnectPlan) Target() (ConnectHop, bool) {
	if len(p.Hops) == 0 {
		return ConnectHop{}, false
	}
	return p.Hops[len(p.Hops)-1], true
}

// Bastions 返回除最终目标外的所有跳板
func (p ConnectPlan) Bastions() []ConnectHop {
	if len(p.Hops) < 2 {
		return nil
	}
	return p.Hops[:len(p.Hops)-1]
}

// ErrEmptyPlan 表示解析得到的连接计划没有任何 hop
var ErrEmptyPlan = errors.New("empty connect plan (no hops)")

// ProfileNotFoundError 表示按 id 或 label 找不到 profile
type ProfileNotFoundError struct {
	Ref string
}

func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("profile not found: %s", e.Ref)
}

// ProfileAlreadyExistsError 表示 label 已被占用
type ProfileAlreadyExistsError struct {
	Label string
}

func (e *ProfileAlreadyExistsError) Error() string {
	return fmt.Sprintf("profile already exists: %s", e.Label)
}

// RouteTargetNotFoundError 表示跳板链引用的 profile 不存在
type RouteTargetNotFoundError struct {
	Ref string
}

func (e *RouteTargetNotFoundError) Error() string {
	return fmt.Sprintf("route target profile not found: %s", e.Ref)
}

// InvalidAuthModeError 表示无法识别的认证方式
type InvalidAuthModeError struct {
	Value string
}

func (e *InvalidAuthModeError) Error() string {
	return fmt.Sprintf("invalid auth mode: %q (want agent, password or key)", e.Value)
}

// NothingToUpdateError 表示 profile set 没有给出任何要修改的字段
type NothingToUpdateError struct {
	Label string
}

func (e *NothingToUpdateError) Error() string {
	return fmt.Sprintf("nothing to update for profile: %s", e.Label)
}

// PasswordStoreError 表示系统钥匙串访问失败（不包括“没有保存密码”）
type PasswordStoreError struct {
	ProfileID uint
	Op        string
	Err       error
}

func (e *PasswordStoreError) Error() string {
	return fmt.Sprintf("password store: failed to %s password for profile #%d: %v", e.Op, e.ProfileID, e.Err)
}

func (e *PasswordStoreError) Unwrap() error {
	return e.Err
}

// LaunchError 表示 ssh 客户端进程无法启动
type LaunchError struct {
	Bin string
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Bin, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}
