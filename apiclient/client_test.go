package apiclient_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/matrixkb/apiclient"
	"github.com/Alia5/matrixkb/apitypes"
	"github.com/Alia5/matrixkb/scancode"
)

// testClient constructs a client backed by an in-memory responder keyed by
// the unfilled path pattern. A non-nil err fails every request.
func testClient(responses map[string]string, err error) *apiclient.Client {
	return apiclient.WithTransport(apiclient.NewMockTransport(func(path string, _ any, _ map[string]string) (string, error) {
		if err != nil {
			return "", err
		}
		return responses[path], nil
	}))
}

func TestHighLevelClient(t *testing.T) {
	caps := scancode.MustNew(3, 0, 0)
	tests := []struct {
		name      string
		responses map[string]string
		err       error
		call      func(c *apiclient.Client) (any, error)
		want      any
		wantErr   string
	}{
		{
			name:      "ping",
			responses: map[string]string{"ping": `{"server":"matrixkb","version":"dev"}`},
			call:      func(c *apiclient.Client) (any, error) { return c.Ping() },
			want:      &apitypes.PingResponse{Server: "matrixkb", Version: "dev"},
		},
		{
			name:      "key down",
			responses: map[string]string{"key/{code}/down": `{"code":"3.0.0","value":48,"pressed":true}`},
			call:      func(c *apiclient.Client) (any, error) { return c.KeyDown(caps) },
			want:      &apitypes.KeyResponse{Code: "3.0.0", Value: 48, Pressed: true},
		},
		{
			name:      "key up",
			responses: map[string]string{"key/{code}/up": `{"code":"3.0.0","value":48,"pressed":false}`},
			call:      func(c *apiclient.Client) (any, error) { return c.KeyUp(caps) },
			want:      &apitypes.KeyResponse{Code: "3.0.0", Value: 48},
		},
		{
			name:      "matrix list",
			responses: map[string]string{"matrix/list": `{"pressed":["0.0.1","4.1.6"]}`},
			call:      func(c *apiclient.Client) (any, error) { return c.MatrixList() },
			want:      &apitypes.MatrixListResponse{Pressed: []string{"0.0.1", "4.1.6"}},
		},
		{
			name:      "leds",
			responses: map[string]string{"leds": `{"red":true,"green":false,"blue":false,"capsLock":true}`},
			call:      func(c *apiclient.Client) (any, error) { return c.LEDs() },
			want:      &apitypes.LEDsResponse{Red: true, CapsLock: true},
		},
		{
			name:      "state",
			responses: map[string]string{"state": `{"delayTicks":252,"rateTicks":100,"capsLock":false,"queued":2,"queueSize":16,"hostAttached":true}`},
			call:      func(c *apiclient.Client) (any, error) { return c.State() },
			want:      &apitypes.StateResponse{DelayTicks: 252, RateTicks: 100, Queued: 2, QueueSize: 16, HostAttached: true},
		},
		{
			name:      "structured error",
			responses: map[string]string{"key/{code}/down": `{"status":400,"title":"Bad Request","detail":"invalid code"}`},
			call:      func(c *apiclient.Client) (any, error) { return c.KeyDown(caps) },
			wantErr:   "400 Bad Request: invalid code",
		},
		{
			name:    "transport failure",
			err:     errors.New("dial fail"),
			call:    func(c *apiclient.Client) (any, error) { return c.State() },
			wantErr: "dial fail",
		},
		{
			name:    "blank response",
			call:    func(c *apiclient.Client) (any, error) { return c.LEDs() },
			wantErr: "empty response",
		},
		{
			name:      "malformed response",
			responses: map[string]string{"state": `{"delayTicks":"x"}`},
			call:      func(c *apiclient.Client) (any, error) { return c.State() },
			wantErr:   "decode:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.call(testClient(tt.responses, tt.err))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStructuredErrorIsApiError(t *testing.T) {
	c := testClient(map[string]string{"state": `{"status":401,"title":"Unauthorized","detail":"authentication required"}`}, nil)
	_, err := c.State()
	var apiErr *apitypes.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestTapReleasesAfterHold(t *testing.T) {
	var calls []string
	c := apiclient.WithTransport(apiclient.NewMockTransport(func(path string, _ any, p map[string]string) (string, error) {
		calls = append(calls, path+" "+p["code"])
		return `{"code":"1.0.0","value":16,"pressed":true}`, nil
	}))
	start := time.Now()
	require.NoError(t, c.Tap(scancode.MustNew(1, 0, 0), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, []string{"key/{code}/down 1.0.0", "key/{code}/up 1.0.0"}, calls)
}

func TestTapReleasesOnCancel(t *testing.T) {
	var calls []string
	c := apiclient.WithTransport(apiclient.NewMockTransport(func(path string, _ any, _ map[string]string) (string, error) {
		calls = append(calls, path)
		return `{"code":"1.0.0","value":16,"pressed":true}`, nil
	}))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := c.TapCtx(ctx, scancode.MustNew(1, 0, 0), time.Hour)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"key/{code}/down", "key/{code}/up"}, calls)
}

func TestOpenLinkNotSupportedWithMockTransport(t *testing.T) {
	_, err := testClient(nil, nil).OpenLink(context.Background())
	assert.ErrorContains(t, err, "not supported with mock transport")
}
