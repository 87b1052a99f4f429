package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/Alia5/matrixkb/apitypes"
	"github.com/Alia5/matrixkb/command"
	"github.com/Alia5/matrixkb/scancode"
)

// problemStart opens a problem+json line. As an event byte it would address
// row 7, which does not exist, so it cannot be confused with a key event.
const problemStart = '{'

// ErrStreamClosed is returned by operations on a closed LinkStream.
var ErrStreamClosed = errors.New("link stream closed")

// LinkStream is the host end of the keyboard's serial link, tunnelled over
// the management API.
type LinkStream struct {
	conn net.Conn
	r    *bufio.Reader

	mu         sync.Mutex
	closed     bool
	readCancel context.CancelFunc
}

// OpenLink attaches to the keyboard's serial link. Only one link stream may
// be open at a time; a second one fails on its first read with a 409.
func (c *Client) OpenLink(ctx context.Context) (*LinkStream, error) {
	if c.transport.mock != nil {
		return nil, fmt.Errorf("stream connections not supported with mock transport")
	}
	conn, err := c.transport.dial(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write([]byte("link\x00")); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	return &LinkStream{conn: conn, r: bufio.NewReader(conn)}, nil
}

func (s *LinkStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// SendCommand writes one command byte.
func (s *LinkStream) SendCommand(cmd command.Command) error {
	return s.SendBytes(cmd.Byte())
}

// SendBytes writes raw command bytes.
func (s *LinkStream) SendBytes(b ...byte) error {
	if s.isClosed() {
		return ErrStreamClosed
	}
	_, err := s.conn.Write(b)
	return err
}

// ReadEvent blocks for the next key event. A server-side rejection is
// returned as *apitypes.ApiError.
func (s *LinkStream) ReadEvent() (scancode.Event, error) {
	if s.isClosed() {
		return scancode.Event{}, ErrStreamClosed
	}
	b, err := s.r.ReadByte()
	if err != nil {
		return scancode.Event{}, err
	}
	if b == problemStart {
		rest, _ := s.r.ReadString('\n')
		line := strings.TrimSuffix(string(problemStart)+rest, "\n")
		var apiErr apitypes.ApiError
		if err := json.Unmarshal([]byte(line), &apiErr); err == nil && apiErr.Status != 0 {
			return scancode.Event{}, &apiErr
		}
		return scancode.Event{}, fmt.Errorf("unexpected data on link: %q", line)
	}
	return scancode.DecodeEvent(b)
}

// StartReading delivers events on a channel until ctx ends or the stream
// fails. The error channel receives exactly one error and then closes.
func (s *LinkStream) StartReading(ctx context.Context, chSize int) (<-chan scancode.Event, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readCancel != nil {
		panic("StartReading called twice on the same stream")
	}

	evCh := make(chan scancode.Event, chSize)
	errCh := make(chan error, 1)
	readCtx, cancel := context.WithCancel(ctx)
	s.readCancel = cancel
	stop := context.AfterFunc(readCtx, func() { _ = s.conn.SetReadDeadline(time.Now()) })

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer cancel()
		defer stop()
		for {
			ev, err := s.ReadEvent()
			if err != nil {
				if readCtx.Err() != nil {
					err = readCtx.Err()
				}
				errCh <- err
				return
			}
			select {
			case evCh <- ev:
			case <-readCtx.Done():
				errCh <- readCtx.Err()
				return
			}
		}
	}()
	return evCh, errCh
}

func (s *LinkStream) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

// Close detaches from the link and stops any background reader.
func (s *LinkStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.readCancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return s.conn.Close()
}
