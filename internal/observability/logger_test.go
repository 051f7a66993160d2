package observability

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/recera/mindcloud/internal/config"
)

func forceColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })
}

func TestNew_Console(t *testing.T) {
	forceColor(t)
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "mindcloud",
		Colors:      config.ColorConfig{Info: "green"},
	}, zapcore.AddSync(&buf))

	logger.Info("graph loaded", zap.Int("nodes", 12))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "\x1b[32m", "info is green")
	assert.Contains(t, out, "mindcloud")
	assert.Contains(t, out, `"nodes": 12`)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggerConfig{Level: "warn", Format: "json"}, zapcore.AddSync(&buf))
	logger.Info("dropped")
	logger.Warn("kept", zap.String("id", "p1"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "p1", entry["id"])
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggerConfig{Level: "chatty", Format: "json"}, zapcore.AddSync(&buf))
	logger.Debug("hidden")
	logger.Info("shown")
	require.NoError(t, logger.Sync())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_FileCore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindcloud.log")
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggerConfig{Level: "info", Format: "console", LogFile: path, MaxSize: 1},
		zapcore.AddSync(&buf))
	logger.Info("to both")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to both"`)
	assert.Contains(t, buf.String(), "to both")
}

func TestInstall_RedirectsStdLog(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf))
	undo := Install(logger)
	log.Print("from std")
	assert.Same(t, logger, zap.L())
	undo()

	assert.Contains(t, buf.String(), "from std")
}
