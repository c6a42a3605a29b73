package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database    DatabaseConfig
	Catalog     CatalogConfig
	Recognition RecognitionConfig
	Game        GameConfig
	Log         LogConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// CatalogConfig points at the game table.
type CatalogConfig struct {
	Path string
}

// RecognitionConfig holds model fetch settings.
type RecognitionConfig struct {
	ModelBaseURL string        `mapstructure:"model_base_url"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// GameConfig holds gameplay settings. A zero seed randomizes the placeholder policy.
type GameConfig struct {
	Seed uint64
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path  string
	Level string
}

// Path returns the config file location, honouring GLYPHTRACE_CONFIG.
func Path() string {
	if p := os.Getenv("GLYPHTRACE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "glyphtrace", "config.toml")
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	share := filepath.Join(os.Getenv("HOME"), ".local", "share", "glyphtrace")
	return Config{
		Database:    DatabaseConfig{Path: filepath.Join(share, "glyphtrace.db")},
		Catalog:     CatalogConfig{Path: filepath.Join(os.Getenv("HOME"), ".config", "glyphtrace", "games.toml")},
		Recognition: RecognitionConfig{ModelBaseURL: "", FetchTimeout: 10 * time.Second},
		Log:         LogConfig{Path: filepath.Join(share, "glyphtrace.log"), Level: "info"},
	}
}

// Load reads configuration from file and env. Env var overrides use prefix GLYPHTRACE_.
func Load() (Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("recognition.model_base_url", d.Recognition.ModelBaseURL)
	v.SetDefault("recognition.fetch_timeout", d.Recognition.FetchTimeout)
	v.SetDefault("game.seed", d.Game.Seed)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.level", d.Log.Level)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("GLYPHTRACE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing file is fine, a broken one is not
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(Path()); statErr == nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Recognition.FetchTimeout <= 0 {
		c.Recognition.FetchTimeout = d.Recognition.FetchTimeout
	}
	return c, nil
}

// Save writes cfg to Path(), creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("catalog.path", cfg.Catalog.Path)
	v.Set("recognition.model_base_url", cfg.Recognition.ModelBaseURL)
	v.Set("recognition.fetch_timeout", cfg.Recognition.FetchTimeout.String())
	v.Set("game.seed", cfg.Game.Seed)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
