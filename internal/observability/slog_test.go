package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/wicket/internal/config"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.LogLevel = config.LogLevelWarn

	var buf bytes.Buffer
	logger := NewLogger(&buf, false, cfg)
	logger.Info("dropped")
	logger.Warn("kept", slog.String("user", "alice"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "alice", record["user"])
	assert.NotContains(t, record, slog.SourceKey)

	buf.Reset()
	cfg.DevMode = true
	NewLogger(&buf, true, cfg).Error("text")
	assert.Contains(t, buf.String(), "msg=text")
	assert.Contains(t, buf.String(), "source=")
}

func TestToLogLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, toLogLevel(config.LogLevelDebug))
	assert.Equal(t, slog.LevelInfo, toLogLevel(config.LogLevelInfo))
	assert.Equal(t, slog.LevelWarn, toLogLevel(config.LogLevelWarn))
	assert.Equal(t, slog.LevelError, toLogLevel(config.LogLevelError))
	assert.Equal(t, slog.LevelInfo+2, toLogLevel("INFO+2"))
	assert.Equal(t, slog.LevelInfo, toLogLevel("nonsense"))
}
