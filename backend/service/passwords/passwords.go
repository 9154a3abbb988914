package passwords

import (
	"context"
	"errors"

	"github.com/juju/loggo"

	"jmssh/backend/internal/credential"
	"jmssh/backend/internal/store"
)

var logger = loggo.GetLogger("jmssh.passwords")

// ProfileFinder 按 label 查找 profile
type ProfileFinder interface {
	ProfileByLabel(ctx context.Context, label string) (*store.Profile, error)
}

// Service 按 profile label 管理钥匙串中的密码
type Service struct {
	profiles ProfileFinder
	creds    credential.Store
}

func NewService(profiles ProfileFinder, creds credential.Store) *Service {
	return &Service{profiles: profiles, creds: creds}
}

// ErrEmptyPassword 表示尝试保存空密码
var ErrEmptyPassword = errors.New("password cannot be empty")

// Set 保存 label 对应 profile 的密码
func (s *Service) Set(ctx context.Context, label, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	p, err := s.profiles.ProfileByLabel(ctx, label)
	if err != nil {
		return err
	}
	if err := s.creds.Set(p.ID, password); err != nil {
		return err
	}
	logger.Infof("password stored for %s", label)
	return nil
}

// Show 返回保存的密码；没有保存时 found 为 false
func (s *Service) Show(ctx context.Context, label string) (password string, found bool, err error) {
	p, err := s.profiles.ProfileByLabel(ctx, label)
	if err != nil {
		return "", false, err
	}
	return s.creds.Get(p.ID)
}

// Clear 删除保存的密码，本来没有也算成功
func (s *Service) Clear(ctx context.Context, label string) error {
	p, err := s.profiles.ProfileByLabel(ctx, label)
	if err != nil {
		return err
	}
	if err := s.creds.Clear(p.ID); err != nil {
		return err
	}
	logger.Infof("password cleared for %s", label)
	return nil
}
