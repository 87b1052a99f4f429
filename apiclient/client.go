package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Alia5/matrixkb/apitypes"
	"github.com/Alia5/matrixkb/scancode"
)

// Client is the typed management API client.
type Client struct{ transport *Transport }

// New constructs a client for the API server at addr (host:port).
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport settings.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport wraps an existing transport, typically a mock.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the server identity and version.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "ping", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PingResponse](raw)
}

// KeyDown presses a key on the simulated matrix.
func (c *Client) KeyDown(code scancode.ScanCode) (*apitypes.KeyResponse, error) {
	return c.KeyDownCtx(context.Background(), code)
}

func (c *Client) KeyDownCtx(ctx context.Context, code scancode.ScanCode) (*apitypes.KeyResponse, error) {
	return c.key(ctx, "key/{code}/down", code)
}

// KeyUp releases a key on the simulated matrix.
func (c *Client) KeyUp(code scancode.ScanCode) (*apitypes.KeyResponse, error) {
	return c.KeyUpCtx(context.Background(), code)
}

func (c *Client) KeyUpCtx(ctx context.Context, code scancode.ScanCode) (*apitypes.KeyResponse, error) {
	return c.key(ctx, "key/{code}/up", code)
}

func (c *Client) key(ctx context.Context, path string, code scancode.ScanCode) (*apitypes.KeyResponse, error) {
	raw, err := c.transport.DoCtx(ctx, path, nil, map[string]string{"code": code.String()})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.KeyResponse](raw)
}

// Tap presses code, holds it for hold and releases it. hold must exceed the
// debounce window (threshold+1 scan intervals) for the press to register.
func (c *Client) Tap(code scancode.ScanCode, hold time.Duration) error {
	return c.TapCtx(context.Background(), code, hold)
}

func (c *Client) TapCtx(ctx context.Context, code scancode.ScanCode, hold time.Duration) error {
	if _, err := c.KeyDownCtx(ctx, code); err != nil {
		return err
	}
	t := time.NewTimer(hold)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
	// release even if ctx ended so the key is not left held
	_, err := c.KeyUpCtx(context.WithoutCancel(ctx), code)
	if err == nil {
		err = ctx.Err()
	}
	return err
}

// MatrixList returns the pressed keys in scan order.
func (c *Client) MatrixList() (*apitypes.MatrixListResponse, error) {
	return c.MatrixListCtx(context.Background())
}

func (c *Client) MatrixListCtx(ctx context.Context) (*apitypes.MatrixListResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "matrix/list", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.MatrixListResponse](raw)
}

// LEDs returns the indicator outputs.
func (c *Client) LEDs() (*apitypes.LEDsResponse, error) {
	return c.LEDsCtx(context.Background())
}

func (c *Client) LEDsCtx(ctx context.Context) (*apitypes.LEDsResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "leds", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.LEDsResponse](raw)
}

// State returns typematic timing, caps-lock and queue occupancy.
func (c *Client) State() (*apitypes.StateResponse, error) {
	return c.StateCtx(context.Background())
}

func (c *Client) StateCtx(ctx context.Context) (*apitypes.StateResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "state", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.StateResponse](raw)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	if err := json.NewDecoder(bytes.NewReader([]byte(data))).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
