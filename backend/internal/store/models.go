package store

import (
	"jmssh/backend/internal/types"
)

// Profile 是一条 SSH 连接配置
type Profile struct {
	ID       uint           `gorm:"primaryKey;autoIncrement"`
	Label    *string        `gorm:"uniqueIndex"`
	Hostname string         `gorm:"not null"`
	Username string         `gorm:"not null"`
	Port     *int           // nil 表示使用 22
	AuthMode types.AuthMode `gorm:"type:text;not null"`
	Tags     *string
	Note     *string
}

func (Profile) TableName() string { return "profiles" }

// LabelOrRef 返回 label，未设置时返回 #<id>
func (p Profile) LabelOrRef() string {
	if p.Label != nil && *p.Label != "" {
		return *p.Label
	}
	return ProfileRef(p.ID)
}

// PortOrDefault 返回端口，未设置时返回 22
func (p Profile) PortOrDefault() int {
	if p.Port == nil || *p.Port == 0 {
		return types.DefaultPort
	}
	return *p.Port
}

// Route 是 owner 跳板链中的一环，Seq 从 0 开始连续
type Route struct {
	ID           uint `gorm:"primaryKey;autoIncrement"`
	ProfileID    uint `gorm:"not null;uniqueIndex:idx_routes_owner_seq"`
	Seq          uint `gorm:"not null;uniqueIndex:idx_routes_owner_seq"`
	ViaProfileID uint `gorm:"not null;index"`
}

func (Route) TableName() string { return "routes" }

// LocalAuth 记录 profile 在本机使用的私钥路径
type LocalAuth struct {
	ID           uint `gorm:"primaryKey;autoIncrement"`
	ProfileID    uint `gorm:"not null;uniqueIndex"`
	KeyPathLocal *string
}

func (LocalAuth) TableName() string { return "local_auth" }
