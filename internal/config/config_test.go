package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbellingham/stagecraft/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "player.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "engine:\n  url: ws://engine.example:9000/ws\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://engine.example:9000/ws", cfg.Engine.URL)
	assert.Equal(t, 20*time.Second, cfg.Engine.HeartbeatInterval)
	assert.Equal(t, "threaded", cfg.Engine.Profile)
	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.True(t, cfg.Reconnect.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Reconnect.InitialInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "Player", cfg.Player.Role)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
engine:
  url: wss://play.example/ws
  heartbeat_interval: 45s
  profile: cooperative
api:
  base_url: https://play.example
  timeout: 5s
reconnect:
  enabled: false
logging:
  level: debug
  format: json
player:
  name: alice
  role: DungeonMaster
  directors_dir: /tmp/presets
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "wss://play.example/ws", cfg.Engine.URL)
	assert.Equal(t, 45*time.Second, cfg.Engine.HeartbeatInterval)
	assert.Equal(t, "cooperative", cfg.Engine.Profile)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.Reconnect.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "alice", cfg.Player.Name)
	assert.Equal(t, "DungeonMaster", cfg.Player.Role)
	assert.Equal(t, "/tmp/presets", cfg.Player.DirectorsDir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_EngineURLScheme(t *testing.T) {
	path := writeConfig(t, "engine:\n  url: http://not-a-websocket\n")
	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.url")
}

func TestValidate_Profile(t *testing.T) {
	path := writeConfig(t, "engine:\n  profile: turbo\n")
	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.profile")
}

func TestValidate_Role(t *testing.T) {
	path := writeConfig(t, "player:\n  role: Bard\n")
	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "player.role")
}

func TestValidate_ReconnectBounds(t *testing.T) {
	path := writeConfig(t, `
reconnect:
  enabled: true
  initial_interval: 10s
  max_interval: 1s
`)
	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconnect.max_interval")
}

func TestValidate_ReconnectIgnoredWhenDisabled(t *testing.T) {
	path := writeConfig(t, `
reconnect:
  enabled: false
  initial_interval: -5s
`)
	_, err := config.Load(path)
	assert.NoError(t, err, "disabled reconnect skips bound checks")
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	cfg := config.Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.url")
	assert.Contains(t, err.Error(), "api.base_url")
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "player.role")
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")
	t.Setenv("STAGECRAFT_LOGGING_LEVEL", "debug")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level, "environment variables override file values")
}
