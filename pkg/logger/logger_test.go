package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiongate/pkg/logger"
)

type ctxKey struct{}

func TestNew_JSONWithContextValue(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithProduction("sessiongate"),
		logger.WithOutput(&buf),
		logger.WithContextValue("request_id", ctxKey{}),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.InfoContext(ctx, "session ready", logger.SessionID("s1"), logger.State("ready"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "session ready", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "s1", rec["session_id"])
	assert.Equal(t, "ready", rec["state"])
	assert.Equal(t, "sessiongate", rec["service"])
	assert.Equal(t, "production", rec["env"])
}

func TestNew_LevelName(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithProduction("svc"),
		logger.WithLevelName("warn"),
		logger.WithOutput(&buf),
	)
	log.Info("dropped")
	assert.Empty(t, buf.String())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_UnknownLevelNameKeepsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithDevelopment("svc"),
		logger.WithLevelName("loud"),
		logger.WithOutput(&buf),
	)
	log.Debug("debug kept")
	assert.Contains(t, buf.String(), "debug kept")
}

func TestWithFormat_PanicsOnInvalid(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	assert.True(t, logger.SessionID("").Equal(slog.Attr{}))
	assert.True(t, logger.RequestID("").Equal(slog.Attr{}))

	err := errors.New("boom")
	assert.Equal(t, err, logger.Error(err).Value.Any())
	assert.Equal(t, int64(3), logger.RetryCount(3).Value.Int64())
	assert.Equal(t, time.Second, logger.Duration(time.Second).Value.Duration())

	tr := logger.Transition("ready", "disconnected", "disconnected")
	require.Equal(t, slog.KindGroup, tr.Value.Kind())
	assert.Len(t, tr.Value.Group(), 3)
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	log := logger.Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
