package tempo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_url = "/tmp/tempo-test.db"
log_level = "warn"
tick_interval = "250ms"
discord_webhook_url = "https://discord.com/api/webhooks/1/abc"
`), 0o644))

	t.Setenv("TEMPO_CONFIG_PATH", path)
	t.Setenv("TEMPO_LOG_LEVEL", "debug")
	t.Setenv("TEMPO_SETTINGS_PATH", filepath.Join(dir, "settings.yaml"))

	cfg, err := LoadConfig(false)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/tempo-test.db", cfg.DatabaseURL)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, filepath.Join(dir, "settings.yaml"), cfg.SettingsPath)
	assert.Equal(t, "https://discord.com/api/webhooks/1/abc", cfg.DiscordWebhookURL)
	assert.Equal(t, "Tempo", cfg.BotName)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("TEMPO_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := LoadConfig(false)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel)
	assert.NotEmpty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.DiscordWebhookURL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"log level", "TEMPO_LOG_LEVEL", "loud"},
		{"tick interval", "TEMPO_TICK_INTERVAL", "soon"},
		{"negative tick", "TEMPO_TICK_INTERVAL", "-1s"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEMPO_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.toml"))
			t.Setenv(tc.key, tc.val)
			_, err := LoadConfig(false)
			assert.Error(t, err)
		})
	}
}

func TestMode(t *testing.T) {
	t.Parallel()

	for _, m := range Modes {
		parsed, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
	_, err := ParseMode("yoga")
	assert.Error(t, err)

	assert.Equal(t, ModePomodoro, ModeMeditation.Next())
	assert.Equal(t, ModeMeditation, ModeStopwatch.Next())
}
