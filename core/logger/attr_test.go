package logger_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/hyperkit/core/logger"
)

func TestAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	log.Warn("unrecognized parameter",
		logger.Component("resolver"),
		logger.Param("foo"),
		logger.Path("/x"),
		logger.Error(nil),
		logger.Route(""),
	)

	out := buf.String()
	assert.Contains(t, out, "component=resolver")
	assert.Contains(t, out, "param=foo")
	assert.Contains(t, out, "path=/x")
	assert.NotContains(t, out, "error=")
	assert.NotContains(t, out, "route=")

	buf.Reset()
	log.Error("failed", logger.Error(errors.New("boom")), logger.Task("email"))
	assert.Contains(t, buf.String(), "error=boom")
	assert.Contains(t, buf.String(), "task=email")

	buf.Reset()
	log.Info("done", logger.RequestID("abc"), logger.BytesOut(12), logger.RequestID(""))
	assert.Contains(t, buf.String(), "request_id=abc")
	assert.Contains(t, buf.String(), "bytes_out=12")
	assert.Equal(t, 1, strings.Count(buf.String(), "request_id"))
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { logger.Discard().Info("dropped") })
}

func TestGroupAndStack(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	log.Info("grouped", logger.Group("req", slog.String("id", "1")), logger.Stack(nil))
	assert.Contains(t, buf.String(), "req.id=1")
	assert.NotContains(t, buf.String(), "stack=")

	buf.Reset()
	log.Error("panicked", logger.Stack([]byte("trace")))
	assert.Contains(t, buf.String(), "stack=trace")
}
