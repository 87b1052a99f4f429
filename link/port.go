// Package link carries the one-byte serial protocol between the controller
// and whichever host stream is currently attached.
package link

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/Alia5/matrixkb/command"
	"github.com/Alia5/matrixkb/internal/log"
	"github.com/Alia5/matrixkb/scancode"
)

var (
	ErrBusy  = errors.New("link already attached")
	ErrEmpty = errors.New("no byte available")
)

// DefaultRxBuffer is the receive buffer used when NewPort is given zero.
const DefaultRxBuffer = 64

// Port implements controller.Link. Inbound bytes are buffered until the
// consumer loop picks them up; outbound bytes go straight to the host.
type Port struct {
	rx     chan byte
	logger *slog.Logger
	raw    log.RawLogger

	mu   sync.Mutex
	host io.Writer
}

func NewPort(rxBuffer int, logger *slog.Logger, raw log.RawLogger) *Port {
	if rxBuffer <= 0 {
		rxBuffer = DefaultRxBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	if raw == nil {
		raw = log.NewRaw(nil, nil)
	}
	return &Port{rx: make(chan byte, rxBuffer), logger: logger, raw: raw}
}

// Describe annotates link bytes for the raw logger.
func Describe(fromHost bool, b byte) string {
	if fromHost {
		return command.Decode(b).String()
	}
	ev, err := scancode.DecodeEvent(b)
	if err != nil {
		return "invalid"
	}
	return ev.String()
}

// SendByte writes b to the attached host. With no host attached the byte is
// dropped, as a UART with nothing on the line would.
func (p *Port) SendByte(b byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.host == nil {
		p.logger.Log(context.Background(), log.LevelTrace, "no host attached, dropping byte", "byte", b)
		return nil
	}
	if _, err := p.host.Write([]byte{b}); err != nil {
		return err
	}
	p.raw.Log(false, []byte{b})
	return nil
}

func (p *Port) ByteAvailable() bool { return len(p.rx) > 0 }

// Queued returns the number of host bytes waiting to be consumed.
func (p *Port) Queued() int { return len(p.rx) }

// ReceiveByte returns the next buffered host byte or ErrEmpty.
func (p *Port) ReceiveByte() (byte, error) {
	select {
	case b := <-p.rx:
		return b, nil
	default:
		return 0, ErrEmpty
	}
}

// Attached reports whether a host stream is attached.
func (p *Port) Attached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.host != nil
}

// Attach makes rw the host side of the link and pumps its bytes into the
// receive buffer until rw reaches EOF or ctx is done. Only one host may be
// attached at a time. If rw is an io.Closer it is closed when ctx ends.
func (p *Port) Attach(ctx context.Context, rw io.ReadWriter) error {
	p.mu.Lock()
	if p.host != nil {
		p.mu.Unlock()
		return ErrBusy
	}
	p.host = rw
	p.mu.Unlock()
	p.logger.Info("host attached")

	defer func() {
		p.mu.Lock()
		p.host = nil
		p.mu.Unlock()
		p.logger.Info("host detached")
	}()

	if c, ok := rw.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stop()
	}

	buf := make([]byte, 64)
	for {
		n, err := rw.Read(buf)
		if n > 0 {
			p.raw.Log(true, buf[:n])
			for _, b := range buf[:n] {
				select {
				case p.rx <- b:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
