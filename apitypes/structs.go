// Package apitypes holds the JSON shapes exchanged with the management API.
package apitypes

import "fmt"

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// KeyResponse echoes the key a key/{code}/down or key/{code}/up request acted on.
type KeyResponse struct {
	Code    string `json:"code"`
	Value   uint8  `json:"value"`
	Pressed bool   `json:"pressed"`
}

type MatrixListResponse struct {
	Pressed []string `json:"pressed"`
}

type LEDsResponse struct {
	Red      bool `json:"red"`
	Green    bool `json:"green"`
	Blue     bool `json:"blue"`
	CapsLock bool `json:"capsLock"`
}

type StateResponse struct {
	DelayTicks   uint16 `json:"delayTicks"`
	RateTicks    uint16 `json:"rateTicks"`
	CapsLock     bool   `json:"capsLock"`
	Queued       int    `json:"queued"`
	QueueSize    int    `json:"queueSize"`
	HostAttached bool   `json:"hostAttached"`
}
