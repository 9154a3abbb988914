package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	jujuerrors "github.com/juju/errors"
	"github.com/juju/loggo"

	"jmssh/backend/internal/credential"
	"jmssh/backend/internal/route"
	"jmssh/backend/internal/sshmanager"
	"jmssh/backend/internal/store"
	"jmssh/backend/internal/types"
)

var logger = loggo.GetLogger("jmssh.profiles")

// add 未指定时使用的默认值
const (
	DefaultHost = "127.0.0.1"
	DefaultUser = "root"
)

// Service 负责 profile 的增删改查以及跳板链、私钥路径的维护
type Service struct {
	store *store.Store
	creds credential.Store
	// validateKey 在写入私钥路径前校验文件，返回规范化后的路径
	validateKey func(path string) (string, error)
}

// NewService 创建 profile 服务
func NewService(s *store.Store, creds credential.Store) *Service {
	return &Service{
		store:       s,
		creds:       creds,
		validateKey: sshmanager.ValidateKeyFile,
	}
}

// ValidateLabel 检查 label 是否可用：非空、不含空白、不以 # 开头（# 用于 id 引用）
func ValidateLabel(label string) error {
	if label == "" {
		return errors.New("label is required")
	}
	if strings.ContainsAny(label, " \t\r\n") {
		return fmt.Errorf("label cannot contain whitespace: %q", label)
	}
	if strings.HasPrefix(label, "#") {
		return fmt.Errorf("label cannot start with '#': %q", label)
	}
	return nil
}

// Add 创建 profile，并在同一事务中写入跳板链和私钥路径。
// label 已存在时返回 ProfileAlreadyExistsError，且不做任何写入。
func (s *Service) Add(ctx context.Context, in types.EditProfileInput) (types.ProfileView, error) {
	if err := ValidateLabel(in.Label); err != nil {
		return types.ProfileView{}, err
	}
	if _, err := s.store.ProfileByLabel(ctx, in.Label); err == nil {
		return types.ProfileView{}, &types.ProfileAlreadyExistsError{Label: in.Label}
	} else if !isNotFound(err) {
		return types.ProfileView{}, jujuerrors.Trace(err)
	}

	keyPath, err := s.normalizeKeyPath(in.KeyPath)
	if err != nil {
		return types.ProfileView{}, err
	}

	label := in.Label
	p := &store.Profile{
		Label:    &label,
		Hostname: DefaultHost,
		Username: DefaultUser,
		AuthMode: types.AuthAgent,
	}
	if keyPath != nil && *keyPath != "" && in.Mode == nil {
		p.AuthMode = types.AuthKey
	}
	if err := applyFields(p, in); err != nil {
		return types.ProfileView{}, err
	}

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.CreateProfile(ctx, p); err != nil {
			return err
		}
		if err := route.ReplaceChain(ctx, tx, p.ID, in.Jumps); err != nil {
			return err
		}
		return writeKeyPath(ctx, tx, p.ID, keyPath)
	})
	if err != nil {
		return types.ProfileView{}, err
	}

	logger.Infof("profile %s added (%s)", label, store.ProfileRef(p.ID))
	return s.Show(ctx, label)
}

// Set 修改已有 profile 的字段；Jumps 非空时整体替换跳板链，为空时保持不变。
// 任一跳板 label 不存在时整个修改回滚。
func (s *Service) Set(ctx context.Context, in types.EditProfileInput) (types.ProfileView, error) {
	if !hasFieldChanges(in) && len(in.Jumps) == 0 {
		return types.ProfileView{}, &types.NothingToUpdateError{Label: in.Label}
	}

	keyPath, err := s.normalizeKeyPath(in.KeyPath)
	if err != nil {
		return types.ProfileView{}, err
	}

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		p, err := tx.ProfileByLabel(ctx, in.Label)
		if err != nil {
			return err
		}
		if hasFieldChanges(in) {
			if err := applyFields(p, in); err != nil {
				return err
			}
			if keyPath != nil && *keyPath != "" && in.Mode == nil {
				p.AuthMode = types.AuthKey
			}
			if err := tx.UpdateProfile(ctx, p); err != nil {
				return err
			}
		}
		if err := route.ReplaceChain(ctx, tx, p.ID, in.Jumps); err != nil {
			return err
		}
		return writeKeyPath(ctx, tx, p.ID, keyPath)
	})
	if err != nil {
		return types.ProfileView{}, err
	}

	logger.Infof("profile %s updated", in.Label)
	return s.Show(ctx, in.Label)
}

// Remove 删除 profile、它的跳板链和私钥路径，然后尽力清除保存的密码
func (s *Service) Remove(ctx context.Context, label string) error {
	p, err := s.store.ProfileByLabel(ctx, label)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProfile(ctx, p.ID); err != nil {
		return err
	}
	if err := s.creds.Clear(p.ID); err != nil {
		logger.Warningf("profile %s removed but its stored password could not be cleared: %v", label, err)
	}
	logger.Infof("profile %s removed", label)
	return nil
}

// Show 返回 profile 的完整信息，包括跳板链和私钥路径
func (s *Service) Show(ctx context.Context, label string) (types.ProfileView, error) {
	p, err := s.store.ProfileByLabel(ctx, label)
	if err != nil {
		return types.ProfileView{}, err
	}
	return s.view(ctx, *p)
}

// List 返回所有 profile，按 label 排序
func (s *Service) List(ctx context.Context) ([]types.ProfileView, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]types.ProfileView, 0, len(profiles))
	for _, p := range profiles {
		v, err := s.view(ctx, p)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// Labels 返回所有 label，用于命令行补全
func (s *Service) Labels(ctx context.Context) ([]string, error) {
	return s.store.Labels(ctx)
}

func (s *Service) view(ctx context.Context, p store.Profile) (types.ProfileView, error) {
	jumps, err := route.ChainLabels(ctx, s.store, p.ID)
	if err != nil {
		return types.ProfileView{}, err
	}
	keys, err := s.store.KeyPathsByProfileIDs(ctx, []uint{p.ID})
	if err != nil {
		return types.ProfileView{}, err
	}
	v := types.ProfileView{
		ID:      p.ID,
		Label:   p.LabelOrRef(),
		Host:    p.Hostname,
		User:    p.Username,
		Port:    p.PortOrDefault(),
		Mode:    p.AuthMode,
		KeyPath: keys[p.ID],
		Jumps:   jumps,
	}
	if p.Tags != nil {
		v.Tags = *p.Tags
	}
	if p.Note != nil {
		v.Note = *p.Note
	}
	return v, nil
}

// normalizeKeyPath 校验并展开私钥路径；空字符串表示清除
func (s *Service) normalizeKeyPath(path *string) (*string, error) {
	if path == nil || *path == "" {
		return path, nil
	}
	abs, err := s.validateKey(*path)
	if err != nil {
		return nil, err
	}
	return &abs, nil
}

func writeKeyPath(ctx context.Context, tx *store.Store, profileID uint, path *string) error {
	switch {
	case path == nil:
		return nil
	case *path == "":
		return tx.DeleteKeyPath(ctx, profileID)
	default:
		return tx.SetKeyPath(ctx, profileID, *path)
	}
}

func hasFieldChanges(in types.EditProfileInput) bool {
	return in.Host != nil || in.User != nil || in.Port != nil || in.Mode != nil ||
		in.Tags != nil || in.Note != nil || in.KeyPath != nil
}

// applyFields 把输入中指定的字段写到 p 上
func applyFields(p *store.Profile, in types.EditProfileInput) error {
	if in.Host != nil {
		if *in.Host == "" {
			return errors.New("host cannot be empty")
		}
		p.Hostname = *in.Host
	}
	if in.User != nil {
		if *in.User == "" {
			return errors.New("user cannot be empty")
		}
		p.Username = *in.User
	}
	if in.Port != nil {
		port := *in.Port
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid port: %d", port)
		}
		if port == types.DefaultPort {
			p.Port = nil
		} else {
			p.Port = &port
		}
	}
	if in.Mode != nil {
		p.AuthMode = *in.Mode
	}
	if in.Tags != nil {
		p.Tags = optional(*in.Tags)
	}
	if in.Note != nil {
		p.Note = optional(*in.Note)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isNotFound(err error) bool {
	var notFound *types.ProfileNotFoundError
	return errors.As(err, &notFound)
}
