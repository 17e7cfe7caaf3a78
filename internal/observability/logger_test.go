package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rolecraft/internal/config"
)

func TestNewLogger(t *testing.T) {
	t.Run("json format writes structured entries", func(t *testing.T) {
		buf := new(bytes.Buffer)
		logger, err := newLogger(config.LoggingConfig{Level: "info", Format: "json"}, "ashfall", zapcore.AddSync(buf))
		require.NoError(t, err)

		logger.Info("scene started", zap.String("scene_id", "mill"))
		require.NoError(t, logger.Sync())

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "ashfall", entry["logger"])
		assert.Equal(t, "scene started", entry["msg"])
		assert.Equal(t, "mill", entry["scene_id"])
	})

	t.Run("level filters debug", func(t *testing.T) {
		buf := new(bytes.Buffer)
		logger, err := newLogger(config.LoggingConfig{Level: "warn", Format: "json"}, "", zapcore.AddSync(buf))
		require.NoError(t, err)

		logger.Debug("hidden")
		logger.Info("hidden too")
		logger.Warn("visible")
		require.NoError(t, logger.Sync())

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "visible")
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		buf := new(bytes.Buffer)
		logger, err := newLogger(config.LoggingConfig{Level: "loud", Format: "console"}, "", zapcore.AddSync(buf))
		require.NoError(t, err)

		logger.Debug("quiet")
		logger.Info("normal")
		require.NoError(t, logger.Sync())

		assert.NotContains(t, buf.String(), "quiet")
		assert.Contains(t, buf.String(), "normal")
	})

	t.Run("file output is json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rolecraft.log")
		buf := new(bytes.Buffer)
		logger, err := newLogger(config.LoggingConfig{Level: "info", Format: "console", File: path, MaxSize: 1}, "", zapcore.AddSync(buf))
		require.NoError(t, err)

		logger.Info("to file")
		require.NoError(t, logger.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		line := strings.TrimSpace(string(data))
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "to file", entry["msg"])
	})
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
