package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger records every byte crossing the serial link.
type RawLogger interface {
	// Log records data; fromHost is true for host to device traffic.
	Log(fromHost bool, data []byte)
}

// Describer annotates a single link byte, e.g. "4.0.5 down" or "delay=20".
type Describer func(fromHost bool, b byte) string

type rawLogger struct {
	w        io.Writer
	describe Describer
	now      func() time.Time
	mu       sync.Mutex
}

// NewRaw creates a RawLogger writing one line per byte to w. A nil w yields a
// logger that discards everything; a nil describe omits annotations.
func NewRaw(w io.Writer, describe Describer) RawLogger {
	return &rawLogger{w: w, describe: describe, now: time.Now}
}

func (r *rawLogger) Log(fromHost bool, data []byte) {
	if r.w == nil || len(data) == 0 {
		return
	}
	dir := "D->H"
	if fromHost {
		dir = "H->D"
	}
	ts := r.now().Format("2006/01/02 15:04:05.000")

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range data {
		if r.describe != nil {
			_, _ = fmt.Fprintf(r.w, "%s %s %02x %s\n", ts, dir, b, r.describe(fromHost, b))
			continue
		}
		_, _ = fmt.Fprintf(r.w, "%s %s %02x\n", ts, dir, b)
	}
}
