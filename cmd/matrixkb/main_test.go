package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindUserConfig(t *testing.T) {
	t.Setenv("MATRIXKB_CONFIG", "")
	tests := []struct {
		name string
		args []string
		env  string
		want string
	}{
		{name: "none", args: []string{"run"}},
		{name: "equals form", args: []string{"--config=/etc/kb.yaml", "run"}, want: "/etc/kb.yaml"},
		{name: "separate value", args: []string{"run", "--config", "kb.toml"}, want: "kb.toml"},
		{name: "dangling flag", args: []string{"run", "--config"}},
		{name: "env fallback", args: []string{"run"}, env: "env.json", want: "env.json"},
		{name: "flag beats env", args: []string{"--config=flag.json"}, env: "env.json", want: "flag.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MATRIXKB_CONFIG", tt.env)
			assert.Equal(t, tt.want, findUserConfig(tt.args))
		})
	}
}
