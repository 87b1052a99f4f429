package configpaths

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigDirXDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG paths are unix only")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "matrixkb"), dir)

	p, err := DefaultNamedConfigPath("run", "yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "matrixkb", "run.yaml"), p)
}

func TestConfigCandidatePathsUserFirst(t *testing.T) {
	tests := []struct {
		user string
		pick func(j, y, t []string) []string
	}{
		{user: "my.json", pick: func(j, _, _ []string) []string { return j }},
		{user: "my.yml", pick: func(_, y, _ []string) []string { return y }},
		{user: "my.toml", pick: func(_, _, t []string) []string { return t }},
		{user: "my.conf", pick: func(j, _, _ []string) []string { return j }},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			j, y, tm := ConfigCandidatePaths(tt.user)
			got := tt.pick(j, y, tm)
			require.NotEmpty(t, got)
			assert.Equal(t, tt.user, got[0])
		})
	}
}

func TestConfigCandidatePathsWorkingDir(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	j, y, tm := ConfigCandidatePaths("")
	assert.Contains(t, j, filepath.Join(dir, "matrixkb.json"))
	assert.Contains(t, y, filepath.Join(dir, "run.yml"))
	assert.Contains(t, tm, filepath.Join(dir, "monitor.toml"))
}
