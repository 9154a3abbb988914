package profiles

import (
	"context"
	"os/user"
	"strings"

	"jmssh/backend/internal/route"
	"jmssh/backend/internal/sshmanager"
	"jmssh/backend/internal/store"
	"jmssh/backend/internal/types"
	"jmssh/backend/pkg/sshconfig"
)

// ImportTag 写入导入 profile 的 tags
const ImportTag = "ssh-config"

// SkippedHost 是没有导入的主机及原因
type SkippedHost struct {
	Alias  string
	Reason string
}

// ImportResult 是一次导入的结果
type ImportResult struct {
	Created []string
	Skipped []SkippedHost
}

// Import 把 ~/.ssh/config 中的具体主机导入为 profile，全部在一个事务中完成。
// label 已存在的主机被跳过；ProxyJump 只能引用同一文件中的别名或已有 label，否则该主机被跳过。
func (s *Service) Import(ctx context.Context, path string) (ImportResult, error) {
	cfg, err := sshconfig.Load(path)
	if err != nil {
		return ImportResult{}, err
	}

	existing, err := s.store.Labels(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	known := make(map[string]bool, len(existing))
	for _, l := range existing {
		known[l] = true
	}

	var result ImportResult
	candidates := make(map[string]sshconfig.Host)
	var order []string
	for _, h := range cfg.Hosts {
		switch {
		case known[h.Alias]:
			result.Skipped = append(result.Skipped, SkippedHost{h.Alias, "profile already exists"})
		case ValidateLabel(h.Alias) != nil:
			result.Skipped = append(result.Skipped, SkippedHost{h.Alias, "alias is not a valid label"})
		default:
			candidates[h.Alias] = h
			order = append(order, h.Alias)
		}
	}

	// 反复剔除引用了不可用跳板的主机，直到稳定
	for changed := true; changed; {
		changed = false
		for _, alias := range order {
			h, ok := candidates[alias]
			if !ok {
				continue
			}
			for _, jump := range h.ProxyJump {
				if _, inFile := candidates[jump]; !inFile && !known[jump] {
					delete(candidates, alias)
					result.Skipped = append(result.Skipped, SkippedHost{alias, "unknown ProxyJump " + jump})
					changed = true
					break
				}
			}
		}
	}

	defaultUser := localUser()
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		ids := make(map[string]uint, len(candidates))
		for _, alias := range order {
			h, ok := candidates[alias]
			if !ok {
				continue
			}
			p := profileFromHost(h, defaultUser)
			if err := tx.CreateProfile(ctx, p); err != nil {
				return err
			}
			ids[alias] = p.ID
			if h.IdentityFile != "" {
				keyPath, err := sshmanager.ExpandPath(h.IdentityFile)
				if err != nil {
					return err
				}
				if err := tx.SetKeyPath(ctx, p.ID, keyPath); err != nil {
					return err
				}
			}
		}
		// 所有 profile 创建后再写跳板链，链中引用的别名此时都已存在
		for _, alias := range order {
			h, ok := candidates[alias]
			if !ok {
				continue
			}
			if err := route.ReplaceChain(ctx, tx, ids[alias], h.ProxyJump); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	for _, alias := range order {
		if _, ok := candidates[alias]; ok {
			result.Created = append(result.Created, alias)
		}
	}
	logger.Infof("imported %d profiles from %s (%d skipped)", len(result.Created), path, len(result.Skipped))
	return result, nil
}

func profileFromHost(h sshconfig.Host, defaultUser string) *store.Profile {
	label := h.Alias
	p := &store.Profile{
		Label:    &label,
		Hostname: h.HostName,
		Username: h.User,
		AuthMode: types.AuthAgent,
		Tags:     optional(ImportTag),
		Note:     optional(h.Description),
	}
	if p.Username == "" {
		p.Username = defaultUser
	}
	if h.Port != 0 && h.Port != types.DefaultPort {
		port := h.Port
		p.Port = &port
	}
	if h.IdentityFile != "" {
		p.AuthMode = types.AuthKey
	}
	return p
}

// localUser 返回 ssh 未指定 User 时使用的本地用户名
func localUser() string {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return DefaultUser
	}
	// Windows 上是 DOMAIN\user
	if i := strings.LastIndex(u.Username, `\`); i >= 0 {
		return u.Username[i+1:]
	}
	return u.Username
}
