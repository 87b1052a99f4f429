// Package api implements the management API: a TCP protocol where each
// connection carries one null-terminated request and receives one JSON line,
// or is handed to a stream handler for the rest of its life.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Alia5/matrixkb/internal/server/api/auth"
	apierror "github.com/Alia5/matrixkb/internal/server/api/error"
)

var wsRegex = regexp.MustCompile(`\s`)

// Server serves the management API.
type Server struct {
	config ServerConfig
	logger *slog.Logger
	router *Router

	key []byte
	ln  net.Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(config ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		config: config,
		logger: logger,
		router: NewRouter(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Router returns the router so callers can register handlers before Start.
func (a *Server) Router() *Router { return a.router }

func (a *Server) Config() ServerConfig { return a.config }

// Addr returns the bound listen address once started.
func (a *Server) Addr() string {
	if a.ln == nil {
		return a.config.Addr
	}
	return a.ln.Addr().String()
}

// Start listens on the configured address and serves in the background.
func (a *Server) Start() error {
	if a.config.Password != "" && !a.config.NoAuth {
		key, err := auth.DeriveKey(a.config.Password)
		if err != nil {
			return err
		}
		a.key = key
	}
	ln, err := net.Listen("tcp", a.config.Addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", a.Addr(), "auth", a.key != nil)
	a.wg.Add(1)
	go a.serve()
	return nil
}

// Close stops accepting, cancels running streams and waits for handlers.
func (a *Server) Close() {
	a.cancel()
	if a.ln != nil {
		_ = a.ln.Close()
	}
	a.wg.Wait()
}

func (a *Server) serve() {
	defer a.wg.Done()
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				a.logger.Info("API server stopped")
			} else {
				a.logger.Error("API accept error", "error", err)
			}
			return
		}
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.handleConn(c)
		}()
	}
}

func writeError(w io.Writer, err error) {
	b, _ := json.Marshal(apierror.WrapError(err))
	_, _ = fmt.Fprintf(w, "%s\n", b)
}

func writeOK(w io.Writer, rest string) {
	_, _ = fmt.Fprintf(w, "%s\n", rest)
}

func (a *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connLogger := a.logger.With("remote", conn.RemoteAddr().String())
	if a.config.ConnectionTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(a.config.ConnectionTimeout))
	}

	var rw net.Conn = conn
	r := bufio.NewReader(conn)
	if a.key != nil {
		ok, err := auth.IsAuthHandshake(r)
		if err != nil {
			connLogger.Debug("api handshake read", "error", err)
			return
		}
		if !ok {
			connLogger.Warn("api unauthenticated request")
			writeError(conn, apierror.ErrUnauthorized("authentication required"))
			return
		}
		sc, err := auth.Accept(r, conn, a.key)
		if err != nil {
			connLogger.Warn("api handshake failed", "error", err)
			writeError(conn, err)
			return
		}
		rw = sc
		r = bufio.NewReader(sc)
	}

	reqData, err := r.ReadString('\x00')
	if err != nil {
		if errors.Is(err, io.EOF) {
			connLogger.Error("api incomplete request (no null terminator)")
		} else {
			connLogger.Error("read api data", "error", err)
		}
		return
	}
	reqData = strings.TrimSuffix(reqData, "\x00")
	if reqData == "" {
		writeError(rw, apierror.ErrBadRequest("empty request"))
		return
	}

	path, payload := reqData, ""
	if loc := wsRegex.FindStringIndex(reqData); loc != nil {
		path, payload = reqData[:loc[0]], reqData[loc[1]:]
	}
	if path == "" {
		writeError(rw, apierror.ErrBadRequest("empty path"))
		return
	}
	path = strings.ToLower(path)
	connLogger.Debug("api cmd", "path", path)

	if h, params := a.router.Match(path); h != nil {
		req := &Request{Ctx: a.ctx, Params: params, Payload: payload}
		res := &Response{}
		if err := h(req, res, connLogger); err != nil {
			connLogger.Warn("api handler error", "path", path, "error", err)
			writeError(rw, err)
			return
		}
		writeOK(rw, res.JSON)
		return
	}

	if sh, params := a.router.MatchStream(path); sh != nil {
		_ = conn.SetReadDeadline(time.Time{})
		connLogger.Info("api stream begin", "path", path)
		// bytes sent right after the path may already sit in r
		sc := &bufferedConn{Conn: rw, r: r}
		if err := sh(a.ctx, sc, params, connLogger); err != nil && !errors.Is(err, context.Canceled) {
			connLogger.Error("api stream handler error", "path", path, "error", err)
			writeError(rw, err)
		}
		connLogger.Info("api stream end", "path", path)
		return
	}

	connLogger.Warn("api unknown path", "path", path)
	writeError(rw, apierror.ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
}

type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) { return c.r.Read(p) }
