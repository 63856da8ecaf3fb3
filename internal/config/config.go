package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPort      = 3000
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// DefaultOrigins are the front-ends allowed to call the API out of the box:
// the local Vite dev server and the deployed app.
var DefaultOrigins = []string{
	"http://localhost:5173",
	"https://app-nu-murex.vercel.app",
}

type Config struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	LogLevel       string   `toml:"log_level"`
	LogFormat      string   `toml:"log_format"`
	MaxConns       int      `toml:"max_conns"`
}

// Load builds the configuration: defaults, then the TOML file named by
// TAREAS_CONFIG (if any), then environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if path := strings.TrimSpace(os.Getenv("TAREAS_CONFIG")); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Port = DefaultPort
	cfg.AllowedOrigins = append([]string(nil), DefaultOrigins...)
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.MaxConns = 0
}

func loadFile(path string, cfg *Config) error {
	var fileCfg Config
	if _, err := toml.DecodeFile(path, &fileCfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	if fileCfg.Port > 0 {
		cfg.Port = fileCfg.Port
	}
	if len(fileCfg.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = fileCfg.AllowedOrigins
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogFormat != "" {
		cfg.LogFormat = fileCfg.LogFormat
	}
	if fileCfg.MaxConns > 0 {
		cfg.MaxConns = fileCfg.MaxConns
	}
	return nil
}

func applyEnv(cfg *Config) {
	// PORT is what the hosting platform (Render) injects.
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil && port > 0 {
		cfg.Port = port
	}

	if origins := splitList(os.Getenv("CORS_ORIGINS")); len(origins) > 0 {
		cfg.AllowedOrigins = origins
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}
	if format := strings.TrimSpace(os.Getenv("LOG_FORMAT")); format != "" {
		cfg.LogFormat = format
	}

	if n, err := strconv.Atoi(os.Getenv("MAX_CONNS")); err == nil && n >= 0 {
		cfg.MaxConns = n
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Addr is the listen address on all interfaces.
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}
