package tempo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const AppName = "tempo"

type Config struct {
	DatabaseURL       string
	SettingsPath      string
	LogLevel          log.Level
	TickInterval      time.Duration
	DiscordWebhookURL string
	BotName           string
}

type fileConfig struct {
	DatabaseURL       string `toml:"database_url"`
	SettingsPath      string `toml:"settings_path"`
	LogLevel          string `toml:"log_level"`
	TickInterval      string `toml:"tick_interval"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
	BotName           string `toml:"bot_name"`
}

// DefaultConfigPath returns ~/.config/tempo/config.toml or its platform equivalent.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.toml")
}

// LoadConfig layers defaults, the TOML config file and TEMPO_* environment
// variables, in that order. Env files are loaded first so they can set any
// TEMPO_* variable.
func LoadConfig(prod bool) (Config, error) {
	if prod {
		_ = godotenv.Load(".env")
	} else {
		_ = godotenv.Load(".env.dev")
	}

	fc := fileConfig{
		DatabaseURL:  filepath.Join(configDir(), "history.db"),
		SettingsPath: filepath.Join(configDir(), "settings.yaml"),
		LogLevel:     "info",
		TickInterval: "100ms",
		BotName:      "Tempo",
	}

	path := os.Getenv("TEMPO_CONFIG_PATH")
	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := toml.DecodeFile(path, &fc); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	override(&fc.DatabaseURL, "TEMPO_DB_PATH")
	override(&fc.SettingsPath, "TEMPO_SETTINGS_PATH")
	override(&fc.LogLevel, "TEMPO_LOG_LEVEL")
	override(&fc.TickInterval, "TEMPO_TICK_INTERVAL")
	override(&fc.DiscordWebhookURL, "TEMPO_DISCORD_WEBHOOK_URL")
	override(&fc.BotName, "TEMPO_BOT_NAME")

	level, err := log.ParseLevel(fc.LogLevel)
	if err != nil {
		return Config{}, fmt.Errorf("invalid log level %q: %w", fc.LogLevel, err)
	}
	tick, err := time.ParseDuration(fc.TickInterval)
	if err != nil {
		return Config{}, fmt.Errorf("invalid tick interval %q: %w", fc.TickInterval, err)
	}
	if tick <= 0 {
		return Config{}, fmt.Errorf("tick interval must be positive: %s", tick)
	}
	if fc.DatabaseURL == "" {
		return Config{}, fmt.Errorf("required config: database_url")
	}

	return Config{
		DatabaseURL:       fc.DatabaseURL,
		SettingsPath:      fc.SettingsPath,
		LogLevel:          level,
		TickInterval:      tick,
		DiscordWebhookURL: fc.DiscordWebhookURL,
		BotName:           fc.BotName,
	}, nil
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(dir, AppName)
}
