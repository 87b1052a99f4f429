package api

import (
	"context"
	"log/slog"
	"net"
	"strings"
)

// Request contains route parameters and the payload following the path.
type Request struct {
	Ctx     context.Context
	Params  map[string]string
	Payload string
}

// Response holds the JSON string to return to the client.
type Response struct {
	JSON string
}

// HandlerFunc processes a request and populates the response. The logger is
// scoped to the connection.
type HandlerFunc func(req *Request, res *Response, logger *slog.Logger) error

// StreamHandlerFunc takes over a long-lived connection. It returns when the
// stream ends; ctx is cancelled when the server shuts down. The server closes
// conn afterwards.
type StreamHandlerFunc func(ctx context.Context, conn net.Conn, params map[string]string, logger *slog.Logger) error

// Router matches slash-separated paths against patterns with {name}
// placeholders. Matching is case-insensitive; parameter names keep their case.
type Router struct {
	routes       []route[HandlerFunc]
	streamRoutes []route[StreamHandlerFunc]
}

type route[H any] struct {
	pattern string
	parts   []string
	names   map[int]string
	handler H
}

func newRoute[H any](pattern string, h H) route[H] {
	parts := strings.Split(strings.ToLower(pattern), "/")
	orig := strings.Split(pattern, "/")
	names := map[int]string{}
	for i, p := range parts {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			names[i] = orig[i][1 : len(orig[i])-1]
		}
	}
	return route[H]{pattern: pattern, parts: parts, names: names, handler: h}
}

func (rt route[H]) match(parts []string) (map[string]string, bool) {
	if len(rt.parts) != len(parts) {
		return nil, false
	}
	params := map[string]string{}
	for i, p := range parts {
		if name, ok := rt.names[i]; ok {
			if p == "" {
				return nil, false
			}
			params[name] = p
			continue
		}
		if rt.parts[i] != p {
			return nil, false
		}
	}
	return params, true
}

func NewRouter() *Router { return &Router{} }

// Register registers a handler for a path pattern like "key/{code}/down".
func (r *Router) Register(pattern string, handler HandlerFunc) {
	r.routes = append(r.routes, newRoute(pattern, handler))
}

// RegisterStream registers a StreamHandler for long-lived connections.
func (r *Router) RegisterStream(pattern string, handler StreamHandlerFunc) {
	r.streamRoutes = append(r.streamRoutes, newRoute(pattern, handler))
}

// Match returns the handler and params for path, or nil.
func (r *Router) Match(path string) (HandlerFunc, map[string]string) {
	parts := strings.Split(strings.ToLower(path), "/")
	for _, rt := range r.routes {
		if params, ok := rt.match(parts); ok {
			return rt.handler, params
		}
	}
	return nil, nil
}

// MatchStream returns the stream handler and params for path, or nil.
func (r *Router) MatchStream(path string) (StreamHandlerFunc, map[string]string) {
	parts := strings.Split(strings.ToLower(path), "/")
	for _, rt := range r.streamRoutes {
		if params, ok := rt.match(parts); ok {
			return rt.handler, params
		}
	}
	return nil, nil
}

// Patterns lists the registered request and stream patterns.
func (r *Router) Patterns() (routes, streams []string) {
	for _, rt := range r.routes {
		routes = append(routes, rt.pattern)
	}
	for _, rt := range r.streamRoutes {
		streams = append(streams, rt.pattern)
	}
	return routes, streams
}
