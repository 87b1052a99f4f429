package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"

	apierror "github.com/Alia5/matrixkb/internal/server/api/error"
	"github.com/Alia5/matrixkb/link"
)

// LinkAttacher is the device end of the serial link.
type LinkAttacher interface {
	Attach(ctx context.Context, rw io.ReadWriter) error
}

// LinkStreamHandler makes the connection the host side of the serial link:
// bytes the client writes are host commands, bytes it reads are key events.
// A second client while one is attached gets a 409 problem line.
func LinkStreamHandler(port LinkAttacher) StreamHandlerFunc {
	return func(ctx context.Context, conn net.Conn, _ map[string]string, logger *slog.Logger) error {
		err := port.Attach(ctx, conn)
		switch {
		case errors.Is(err, link.ErrBusy):
			return apierror.ErrConflict("link already attached")
		case errors.Is(err, net.ErrClosed):
			return nil
		}
		return err
	}
}
