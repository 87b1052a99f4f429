package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/matrixkb/controller"
	"github.com/Alia5/matrixkb/internal/log"
	"github.com/Alia5/matrixkb/internal/server/api"
)

func testRun() *Run {
	return &Run{
		Controller:      controller.DefaultConfig(),
		ApiServerConfig: api.ServerConfig{Addr: "127.0.0.1:0", ConnectionTimeout: time.Second},
	}
}

func TestRunRejectsInvalidControllerConfig(t *testing.T) {
	r := testRun()
	r.Controller.QueueSize = 12
	err := r.Start(context.Background(), slog.Default(), log.NewRaw(nil, nil))
	assert.ErrorIs(t, err, controller.ErrQueueSize)
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	r := testRun()
	r.ApiServerConfig.NoAuth = true

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, r.Start(ctx, slog.Default(), log.NewRaw(nil, nil)))

	_, err := os.Stat(filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "matrixkb", keyFileName))
	assert.True(t, os.IsNotExist(err), "no key file without auth")
}

func TestRunGeneratesKeyFile(t *testing.T) {
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	r := testRun()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, r.Start(ctx, slog.Default(), log.NewRaw(nil, nil)))

	pwd := readKeyFile()
	assert.NotEmpty(t, pwd)
	assert.Equal(t, pwd, r.ApiServerConfig.Password)

	info, err := os.Stat(filepath.Join(cfgHome, "matrixkb", keyFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := loadOrCreateKey(slog.Default())
	require.NoError(t, err)
	assert.Equal(t, pwd, again)
}

func TestRunWithoutAPI(t *testing.T) {
	r := testRun()
	r.ApiServerConfig.Addr = ""
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, r.Start(ctx, slog.Default(), log.NewRaw(nil, nil)))
}
