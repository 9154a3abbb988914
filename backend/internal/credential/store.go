package credential

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"jmssh/backend/internal/types"
)

// DefaultService 是系统钥匙串中使用的服务名
const DefaultService = "com.jiyamira.jmssh"

// Store 按 profile id 保存密码。没有保存密码不是错误，只返回 found=false。
type Store interface {
	Get(profileID uint) (password string, found bool, err error)
	Set(profileID uint, password string) error
	Clear(profileID uint) error
}

// Account 返回钥匙串条目的用户名部分
func Account(profileID uint) string {
	return fmt.Sprintf("profile:%d", profileID)
}

// KeyringStore 使用系统钥匙串（macOS Keychain / Secret Service / Windows Credential Manager）
type KeyringStore struct {
	Service string
}

// NewKeyringStore 创建一个钥匙串存储，service 为空时使用 DefaultService
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = DefaultService
	}
	return &KeyringStore{Service: service}
}

func (k *KeyringStore) Get(profileID uint) (string, bool, error) {
	pw, err := keyring.Get(k.Service, Account(profileID))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &types.PasswordStoreError{ProfileID: profileID, Op: "get", Err: err}
	}
	return pw, true, nil
}

func (k *KeyringStore) Set(profileID uint, password string) error {
	if err := keyring.Set(k.Service, Account(profileID), password); err != nil {
		return &types.PasswordStoreError{ProfileID: profileID, Op: "set", Err: err}
	}
	return nil
}

// Clear 删除保存的密码，条目不存在时视为成功
func (k *KeyringStore) Clear(profileID uint) error {
	err := keyring.Delete(k.Service, Account(profileID))
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return &types.PasswordStoreError{ProfileID: profileID, Op: "clear", Err: err}
}

// NoopStore 在禁用钥匙串时使用：从不返回密码，写入被拒绝
type NoopStore struct{}

// ErrKeyringDisabled 表示钥匙串已通过 JMSSH_KEYRING=false 关闭
var ErrKeyringDisabled = errors.New("keyring is disabled (JMSSH_KEYRING=false)")

func (NoopStore) Get(uint) (string, bool, error) { return "", false, nil }

func (NoopStore) Set(profileID uint, _ string) error {
	return &types.PasswordStoreError{ProfileID: profileID, Op: "set", Err: ErrKeyringDisabled}
}

func (NoopStore) Clear(uint) error { return nil }
