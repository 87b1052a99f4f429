package handler_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/matrixkb/apiclient"
	"github.com/Alia5/matrixkb/command"
	"github.com/Alia5/matrixkb/internal/server/api"
	"github.com/Alia5/matrixkb/internal/server/api/handler"
	handlerTest "github.com/Alia5/matrixkb/internal/testing"
)

func TestState(t *testing.T) {
	tests := []struct {
		name             string
		commands         []command.Command
		expectedResponse string
	}{
		{
			name:             "power-on defaults",
			expectedResponse: `{"delayTicks":252,"rateTicks":100,"capsLock":false,"queued":0,"queueSize":16,"hostAttached":true}`,
		},
		{
			name:             "host changed typematic timing",
			commands:         []command.Command{command.Delay(10), command.Rate(5)},
			expectedResponse: `{"delayTicks":40,"rateTicks":20,"capsLock":false,"queued":0,"queueSize":16,"hostAttached":true}`,
		},
		{
			name:             "init restores defaults",
			commands:         []command.Command{command.Delay(1), command.Regular(command.Init)},
			expectedResponse: `{"delayTicks":252,"rateTicks":100,"capsLock":false,"queued":0,"queueSize":16,"hostAttached":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, rig, done := handlerTest.StartAPIServer(t, "", func(r *api.Router, rig *handlerTest.Rig, _ *api.Server) {
				r.Register("state", handler.State(rig.Controller, rig.Port))
			})
			defer done()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			host, dev := net.Pipe()
			defer host.Close()
			go func() { _ = rig.Port.Attach(ctx, dev) }()
			require.Eventually(t, rig.Port.Attached, time.Second, time.Millisecond)

			for _, cmd := range tt.commands {
				_, err := host.Write([]byte{cmd.Byte()})
				require.NoError(t, err)
				require.Eventually(t, rig.Port.ByteAvailable, time.Second, time.Millisecond)
				rig.Controller.Step()
			}

			line, err := apiclient.NewTransport(addr).Do("state", nil, nil)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expectedResponse, line)
		})
	}
}

func TestStateWithoutLink(t *testing.T) {
	addr, _, done := handlerTest.StartAPIServer(t, "", func(r *api.Router, rig *handlerTest.Rig, _ *api.Server) {
		r.Register("state", handler.State(rig.Controller, nil))
	})
	defer done()

	line, err := apiclient.NewTransport(addr).Do("state", nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"delayTicks":252,"rateTicks":100,"capsLock":false,"queued":0,"queueSize":16,"hostAttached":false}`, line)
}
