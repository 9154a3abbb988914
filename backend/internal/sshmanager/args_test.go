package sshmanager

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"jmssh/backend/internal/types"
)

func TestBuildArgs(t *testing.T) {
	bastion := types.ConnectHop{ID: 2, Label: "B", User: "b", Host: "hb", Port: 22, AuthMode: types.AuthPassword}
	keyed := types.ConnectHop{ID: 3, Label: "C", User: "c", Host: "hc", Port: 2222, AuthMode: types.AuthKey, KeyPath: "/k"}
	plain := types.ConnectHop{ID: 3, Label: "C", User: "c", Host: "hc", Port: 22, AuthMode: types.AuthAgent}

	tests := []struct {
		name string
		hops []types.ConnectHop
		want []string
	}{
		{
			name: "jump, port and key",
			hops: []types.ConnectHop{bastion, keyed},
			want: []string{"-J", "b@hb:22", "-p", "2222", "-i", "/k", "c@hc"},
		},
		{
			name: "single hop defaults",
			hops: []types.ConnectHop{plain},
			want: []string{"c@hc"},
		},
		{
			name: "two bastions comma joined",
			hops: []types.ConnectHop{
				bastion,
				{User: "x", Host: "hx", Port: 2200},
				plain,
			},
			want: []string{"-J", "b@hb:22,x@hx:2200", "c@hc"},
		},
		{
			name: "key path ignored unless key mode",
			hops: []types.ConnectHop{{User: "c", Host: "hc", Port: 22, AuthMode: types.AuthPassword, KeyPath: "/k"}},
			want: []string{"c@hc"},
		},
		{
			name: "key mode without recorded path",
			hops: []types.ConnectHop{{User: "c", Host: "hc", Port: 22, AuthMode: types.AuthKey}},
			want: []string{"c@hc"},
		},
		{
			name: "empty plan",
			hops: nil,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(BuildArgs(types.ConnectPlan{Hops: tt.hops}), qt.DeepEquals, tt.want)
		})
	}
}

func TestFormatCommand(t *testing.T) {
	c := qt.New(t)
	args := []string{"-J", "b@hb:22", "-p", "2222", "-i", "/k", "c@hc"}

	c.Assert(FormatCommand("ssh", args, "sshpass", false), qt.Equals,
		"ssh -J b@hb:22 -p 2222 -i /k c@hc")
	c.Assert(FormatCommand("ssh", []string{"c@hc"}, "sshpass", true), qt.Equals,
		"sshpass -p '******' ssh c@hc")
	c.Assert(FormatCommand("ssh", []string{"-i", "/my keys/id", "c@hc"}, "", false), qt.Equals,
		"ssh -i '/my keys/id' c@hc")
}
