package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace": LevelTrace,
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewLoggerSplitsStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewLogger(Config{Level: "trace"}, &out, &errOut)

	logger.Log(context.Background(), LevelTrace, "byte", "b", 0x45)
	logger.Info("hello")
	logger.Error("boom")

	assert.Contains(t, out.String(), "level=TRACE")
	assert.Contains(t, out.String(), "msg=hello")
	assert.NotContains(t, out.String(), "boom")
	assert.Contains(t, errOut.String(), "msg=boom")
	assert.NotContains(t, errOut.String(), "hello")
}

func TestNewLoggerJSONAndLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewLogger(Config{Level: "warn", Format: "json"}, &out, &errOut)
	logger.Info("dropped")
	logger.Warn("kept", "key", "value")

	assert.NotContains(t, out.String(), "dropped")
	assert.Contains(t, out.String(), `"msg":"kept"`)
	assert.Contains(t, out.String(), `"key":"value"`)
}

func TestRawLogger(t *testing.T) {
	var buf bytes.Buffer
	r := NewRaw(&buf, func(fromHost bool, b byte) string {
		if fromHost {
			return "cmd"
		}
		return "evt"
	}).(*rawLogger)
	r.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	r.Log(false, []byte{0x45, 0xc5})
	r.Log(true, []byte{0x06})
	r.Log(true, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"2024/01/02 03:04:05.000 D->H 45 evt",
		"2024/01/02 03:04:05.000 D->H c5 evt",
		"2024/01/02 03:04:05.000 H->D 06 cmd",
	}, lines)
}

func TestRawLoggerDiscard(t *testing.T) {
	assert.NotPanics(t, func() { NewRaw(nil, nil).Log(true, []byte{1, 2, 3}) })
}
