package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type errorCloser struct {
	err error
}

func (e *errorCloser) Close() error {
	return e.err
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	LogError(logger, "trip save failed", assert.AnError, slog.String("driver_id", "d-1"))

	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"msg":"trip save failed"`)
	assert.Contains(t, out, `"driver_id":"d-1"`)
	assert.Contains(t, out, assert.AnError.Error())
}

func TestLogErrorNilSafe(t *testing.T) {
	LogError(nil, "ignored", assert.AnError)

	var buf bytes.Buffer
	LogError(NewStructuredLogger(&buf, slog.LevelInfo), "ignored", nil)
	assert.Empty(t, buf.String())
}

func TestLogOperationSkipsZeroDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	LogOperation(logger, "trip_started", slog.String("driver_id", "d-1"), slog.Duration("duration", 0))
	assert.Contains(t, buf.String(), `"msg":"trip_started"`)
	assert.NotContains(t, buf.String(), `"duration"`)

	buf.Reset()
	LogOperation(logger, "trip_stopped", slog.Duration("duration", time.Second))
	assert.Contains(t, buf.String(), `"duration"`)
}

func TestSafeCloseWithLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	SafeCloseWithLogging(&errorCloser{}, logger, "close_store")
	assert.Empty(t, buf.String())

	SafeCloseWithLogging(&errorCloser{err: assert.AnError}, logger, "close_store")
	assert.Contains(t, buf.String(), `"msg":"failed to close resource"`)
	assert.Contains(t, buf.String(), `"operation":"close_store"`)

	SafeCloseWithLogging(nil, logger, "noop")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
