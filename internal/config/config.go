package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Backend names a storage engine.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendBolt   Backend = "bolt"
	BackendBadger Backend = "badger"
)

// InsightProvider names an insight generator.
type InsightProvider string

const (
	InsightLocal  InsightProvider = "local"
	InsightGemini InsightProvider = "gemini"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Identity IdentityConfig `toml:"identity"`
	Goal     GoalConfig     `toml:"goal"`
	Logging  LoggingConfig  `toml:"logging"`
	Insight  InsightConfig  `toml:"insight"`
	Server   ServerConfig   `toml:"server"`
	TUI      TUIConfig      `toml:"tui"`
}

type DatabaseConfig struct {
	Path    string  `toml:"path"`
	Backend Backend `toml:"backend"`
}

type IdentityConfig struct {
	UserID string `toml:"user_id"`
}

type GoalConfig struct {
	DefaultGoal int `toml:"default_goal"`
	MaxGoal     int `toml:"max_goal"`
	WindowSize  int `toml:"window_size"`
}

type LoggingConfig struct {
	Level string        `toml:"level"` // debug | info | warn | error
	File  LogFileConfig `toml:"file"`
}

type LogFileConfig struct {
	Enabled    bool   `toml:"enabled"`
	Dir        string `toml:"dir"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

type InsightConfig struct {
	Provider          InsightProvider `toml:"provider"`
	Model             string          `toml:"model"`
	APIKeyEnv         string          `toml:"api_key_env"`
	SystemInstruction string          `toml:"system_instruction"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type TUIConfig struct {
	ShowHelp      bool   `toml:"show_help"`
	MarkdownStyle string `toml:"markdown_style"` // glamour standard style name
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path:    dbPath,
			Backend: BackendSQLite,
		},
		Identity: IdentityConfig{
			UserID: "local",
		},
		Goal: GoalConfig{
			DefaultGoal: 5,
			MaxGoal:     12,
			WindowSize:  7,
		},
		Logging: LoggingConfig{
			Level: "info",
			File: LogFileConfig{
				Enabled:    false,
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		Insight: InsightConfig{
			Provider:  InsightLocal,
			Model:     "gemini-2.0-flash",
			APIKeyEnv: "GEMINI_API_KEY",
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		TUI: TUIConfig{
			ShowHelp:      true,
			MarkdownStyle: "dark",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Write encodes cfg as TOML at path, creating the directory.
func Write(path string, cfg Config) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	switch c.Database.Backend {
	case BackendSQLite, BackendBolt, BackendBadger:
	default:
		return fmt.Errorf("invalid database.backend: %q", c.Database.Backend)
	}

	if c.Goal.DefaultGoal < 1 {
		return fmt.Errorf("goal.default_goal must be >= 1, got %d", c.Goal.DefaultGoal)
	}
	if c.Goal.MaxGoal < c.Goal.DefaultGoal {
		return fmt.Errorf("goal.max_goal (%d) must be >= goal.default_goal (%d)", c.Goal.MaxGoal, c.Goal.DefaultGoal)
	}
	if c.Goal.WindowSize < 1 {
		return fmt.Errorf("goal.window_size must be >= 1, got %d", c.Goal.WindowSize)
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.File.MaxSizeMB < 0 || c.Logging.File.MaxBackups < 0 || c.Logging.File.MaxAgeDays < 0 {
		return errors.New("logging.file rotation limits must be >= 0")
	}

	switch c.Insight.Provider {
	case InsightLocal:
	case InsightGemini:
		if strings.TrimSpace(c.Insight.APIKeyEnv) == "" {
			return errors.New("insight.api_key_env is required for the gemini provider")
		}
	default:
		return fmt.Errorf("invalid insight.provider: %q", c.Insight.Provider)
	}

	for name, endpoint := range map[string]string{
		"server.api_endpoint": c.Server.APIEndpoint,
		"server.mcp_endpoint": c.Server.MCPEndpoint,
	} {
		if endpoint != "" && !strings.HasPrefix(endpoint, "/") {
			return fmt.Errorf("%s must start with /: %q", name, endpoint)
		}
	}
	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
