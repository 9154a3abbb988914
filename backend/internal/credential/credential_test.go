package credential

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/zalando/go-keyring"

	"jmssh/backend/internal/types"
)

func hop(id uint, mode types.AuthMode) types.ConnectHop {
	return types.ConnectHop{ID: id, Label: "h", Host: "h", User: "u", Port: 22, AuthMode: mode}
}

func TestPasswordHop(t *testing.T) {
	tests := []struct {
		name   string
		hops   []types.ConnectHop
		wantID uint
		wantOK bool
	}{
		{"empty plan", nil, 0, false},
		{"single password hop", []types.ConnectHop{hop(1, types.AuthPassword)}, 1, true},
		{"single agent hop", []types.ConnectHop{hop(1, types.AuthAgent)}, 0, false},
		{"first bastion password", []types.ConnectHop{hop(2, types.AuthPassword), hop(1, types.AuthAgent)}, 2, true},
		// 目标是 password 但第一个跳板不是：不查询
		{"target password behind bastion", []types.ConnectHop{hop(2, types.AuthKey), hop(1, types.AuthPassword)}, 0, false},
		// 第二个跳板不参与
		{"second bastion password", []types.ConnectHop{hop(3, types.AuthAgent), hop(2, types.AuthPassword), hop(1, types.AuthAgent)}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			got, ok := PasswordHop(types.ConnectPlan{Hops: tt.hops})
			c.Assert(ok, qt.Equals, tt.wantOK)
			c.Assert(got.ID, qt.Equals, tt.wantID)
		})
	}
}

func TestKeyringStoreRoundTrip(t *testing.T) {
	c := qt.New(t)
	keyring.MockInit()
	s := NewKeyringStore("")
	c.Assert(s.Service, qt.Equals, DefaultService)

	_, found, err := s.Get(7)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsFalse)

	c.Assert(s.Set(7, "s3cret"), qt.IsNil)
	pw, found, err := s.Get(7)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsTrue)
	c.Assert(pw, qt.Equals, "s3cret")

	// 条目保存在 profile:<id> 下
	raw, err := keyring.Get(DefaultService, "profile:7")
	c.Assert(err, qt.IsNil)
	c.Assert(raw, qt.Equals, "s3cret")

	c.Assert(s.Clear(7), qt.IsNil)
	c.Assert(s.Clear(7), qt.IsNil)
	_, found, err = s.Get(7)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsFalse)
}

func TestKeyringStoreFailure(t *testing.T) {
	c := qt.New(t)
	boom := errors.New("keychain locked")
	keyring.MockInitWithError(boom)
	s := NewKeyringStore("test")

	_, _, err := s.Get(1)
	var storeErr *types.PasswordStoreError
	c.Assert(err, qt.ErrorAs, &storeErr)
	c.Assert(storeErr.Op, qt.Equals, "get")
	c.Assert(err, qt.ErrorIs, boom)
}

func TestResolve(t *testing.T) {
	c := qt.New(t)
	keyring.MockInit()
	s := NewKeyringStore("test-resolve")
	c.Assert(s.Set(2, "pw-for-bastion"), qt.IsNil)
	c.Assert(s.Set(1, "pw-for-target"), qt.IsNil)

	plan := types.ConnectPlan{Hops: []types.ConnectHop{hop(2, types.AuthPassword), hop(1, types.AuthPassword)}}
	cred, err := Resolve(s, plan)
	c.Assert(err, qt.IsNil)
	c.Assert(cred, qt.Equals, Credential{HopID: 2, Password: "pw-for-bastion", Found: true})

	// 没有保存密码不是错误
	cred, err = Resolve(s, types.ConnectPlan{Hops: []types.ConnectHop{hop(9, types.AuthPassword)}})
	c.Assert(err, qt.IsNil)
	c.Assert(cred, qt.Equals, Credential{HopID: 9})

	cred, err = Resolve(s, types.ConnectPlan{Hops: []types.ConnectHop{hop(1, types.AuthAgent)}})
	c.Assert(err, qt.IsNil)
	c.Assert(cred, qt.Equals, Credential{})
}

func TestNoopStore(t *testing.T) {
	c := qt.New(t)
	var s Store = NoopStore{}

	_, found, err := s.Get(1)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsFalse)
	c.Assert(s.Clear(1), qt.IsNil)
	c.Assert(s.Set(1, "x"), qt.ErrorIs, ErrKeyringDisabled)
}
