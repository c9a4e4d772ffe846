package logger_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonesrussell/reelranker/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "out.log")
	l, err := logger.New(logger.Config{Level: "debug", OutputPaths: []string{path}})
	require.NoError(t, err)

	l.Info("session cleared", logger.String("reason", "unauthorized"), logger.Int("status", 401))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := string(data)
	assert.True(t, strings.HasPrefix(line, "{"), "expected JSON output, got %q", line)
	assert.Contains(t, line, `"msg":"session cleared"`)
	assert.Contains(t, line, `"status":401`)
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "out.log")
	l, err := logger.New(logger.Config{Level: "warn", OutputPaths: []string{path}})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Warn("visible")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "visible")
}

func TestFromContext(t *testing.T) {
	t.Helper()

	nop := logger.NewNop()
	ctx := logger.WithContext(context.Background(), nop)
	assert.Same(t, nop, logger.FromContext(ctx))

	assert.NotNil(t, logger.FromContext(context.Background()))
}

func TestConfigSetDefaults(t *testing.T) {
	t.Helper()

	cfg := logger.Config{}
	cfg.SetDefaults()

	assert.Equal(t, logger.DefaultLevel, cfg.Level)
	assert.Equal(t, logger.DefaultFormat, cfg.Format)
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
}
