// Package testing wires a complete in-process keyboard behind an API server
// for handler and client tests.
package testing

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Alia5/matrixkb/controller"
	"github.com/Alia5/matrixkb/indicator"
	"github.com/Alia5/matrixkb/internal/log"
	"github.com/Alia5/matrixkb/internal/server/api"
	"github.com/Alia5/matrixkb/link"
	"github.com/Alia5/matrixkb/matrix"
)

// Rig is a simulated keyboard: matrix, indicators, link and controller.
type Rig struct {
	Matrix     *matrix.Sim
	Panel      *indicator.Panel
	Port       *link.Port
	Controller *controller.Controller
}

// NewRig builds a rig with fast tick intervals. The controller is not
// running; call Run or drive Scan/Step directly.
func NewRig(t *testing.T) *Rig {
	t.Helper()
	logger := slog.Default()
	cfg := controller.DefaultConfig()
	cfg.ScanInterval = time.Millisecond
	cfg.LoopInterval = time.Millisecond

	r := &Rig{
		Matrix: matrix.New(),
		Panel:  indicator.NewPanel(logger, nil),
		Port:   link.NewPort(0, logger, log.NewRaw(nil, nil)),
	}
	c, err := controller.New(cfg, r.Matrix, r.Port, r.Panel, logger)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	r.Controller = c
	return r
}

// Run starts the controller until the test ends.
func (r *Rig) Run(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Controller.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// StartAPIServer starts an API server on a free loopback port and calls
// register so the test can add the handlers it needs. password may be empty.
func StartAPIServer(t *testing.T, password string, register func(r *api.Router, rig *Rig, apiSrv *api.Server)) (addr string, rig *Rig, done func()) {
	t.Helper()
	rig = NewRig(t)
	apiSrv := api.New(api.ServerConfig{
		Addr:              "127.0.0.1:0",
		Password:          password,
		ConnectionTimeout: 2 * time.Second,
	}, slog.Default())
	if register != nil {
		register(apiSrv.Router(), rig, apiSrv)
	}
	if err := apiSrv.Start(); err != nil {
		t.Fatalf("api start failed: %v", err)
	}
	return apiSrv.Addr(), rig, apiSrv.Close
}
