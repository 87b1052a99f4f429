package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/matrixkb/apiclient"
	"github.com/Alia5/matrixkb/internal/server/api"
	"github.com/Alia5/matrixkb/internal/server/api/handler"
	handlerTest "github.com/Alia5/matrixkb/internal/testing"
	"github.com/Alia5/matrixkb/scancode"
)

func TestKeyDownUp(t *testing.T) {
	tests := []struct {
		name             string
		path             string
		code             string
		setup            func(t *testing.T, rig *handlerTest.Rig)
		expectedResponse string
		expectedPressed  []scancode.ScanCode
	}{
		{
			name:             "press key",
			path:             "key/{code}/down",
			code:             "1.1.4",
			expectedResponse: `{"code":"1.1.4","value":28,"pressed":true}`,
			expectedPressed:  []scancode.ScanCode{scancode.MustNew(1, 1, 4)},
		},
		{
			name: "release key",
			path: "key/{code}/up",
			code: "1.1.4",
			setup: func(t *testing.T, rig *handlerTest.Rig) {
				require.NoError(t, rig.Matrix.Press(scancode.MustNew(1, 1, 4)))
			},
			expectedResponse: `{"code":"1.1.4","value":28,"pressed":false}`,
			expectedPressed:  []scancode.ScanCode{},
		},
		{
			name:             "press meta key",
			path:             "key/{code}/down",
			code:             "5.0.6",
			expectedResponse: `{"code":"5.0.6","value":86,"pressed":true}`,
			expectedPressed:  []scancode.ScanCode{scancode.MustNew(5, 0, 6)},
		},
		{
			name:             "column past bank width",
			path:             "key/{code}/down",
			code:             "0.1.7",
			expectedResponse: `{"status":400,"title":"Bad Request","detail":"invalid code: invalid scancode: row 0 bank 1 column 7"}`,
			expectedPressed:  []scancode.ScanCode{},
		},
		{
			name:             "not a code",
			path:             "key/{code}/down",
			code:             "enter",
			expectedResponse: `{"status":400,"title":"Bad Request","detail":"invalid code: invalid scancode: \"enter\""}`,
			expectedPressed:  []scancode.ScanCode{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, rig, done := handlerTest.StartAPIServer(t, "", func(r *api.Router, rig *handlerTest.Rig, _ *api.Server) {
				r.Register("key/{code}/down", handler.KeyDown(rig.Matrix))
				r.Register("key/{code}/up", handler.KeyUp(rig.Matrix))
			})
			defer done()
			if tt.setup != nil {
				tt.setup(t, rig)
			}

			c := apiclient.NewTransport(addr)
			line, err := c.Do(tt.path, nil, map[string]string{"code": tt.code})
			require.NoError(t, err)
			assert.JSONEq(t, tt.expectedResponse, line)
			assert.Equal(t, tt.expectedPressed, rig.Matrix.Pressed())
		})
	}
}
