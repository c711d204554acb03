package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds every setting of the taskboard server.
type Config struct {
	Addr         string        `yaml:"addr" env:"TASKBOARD_ADDR" env-default:":8080"`
	DBPath       string        `yaml:"db_path" env:"TASKBOARD_DB_PATH" env-default:"data/taskboard.db"`
	StaticDir    string        `yaml:"static_dir" env:"TASKBOARD_STATIC_DIR" env-default:"web/dist"`
	LogLevel     string        `yaml:"log_level" env:"TASKBOARD_LOG_LEVEL" env-default:"info"`
	PageSize     int           `yaml:"page_size" env:"TASKBOARD_PAGE_SIZE" env-default:"10"`
	Latency      time.Duration `yaml:"latency" env:"TASKBOARD_LATENCY" env-default:"0s"`
	SkipDemo     bool          `yaml:"skip_demo" env:"TASKBOARD_SKIP_DEMO"`
	ShareBaseURL string        `yaml:"share_base_url" env:"TASKBOARD_SHARE_BASE_URL" env-default:"http://localhost:8080"`
}

// Load reads the YAML file at path with environment overrides. An empty
// path or a missing file falls back to the environment alone.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
		return cfg, cfg.Validate()
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
		cfg = Config{}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.PageSize < 1 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.Latency < 0 {
		return fmt.Errorf("latency must not be negative, got %s", c.Latency)
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	return nil
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
