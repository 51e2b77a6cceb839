package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration. It is constructed once
// at startup and treated as immutable afterwards.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// UpstreamConfig holds the backend endpoints and credentials. The token,
// chat and embedding endpoints carry separate per-call timeout budgets.
type UpstreamConfig struct {
	TokenURL         string        `mapstructure:"token_url"`
	ChatURL          string        `mapstructure:"chat_url"`
	EmbeddingURL     string        `mapstructure:"embedding_url"`
	AuthCode         string        `mapstructure:"auth_code"`
	VerifySSL        bool          `mapstructure:"verify_ssl"`
	TokenTimeout     time.Duration `mapstructure:"token_timeout"`
	ChatTimeout      time.Duration `mapstructure:"chat_timeout"`
	EmbeddingTimeout time.Duration `mapstructure:"embedding_timeout"`
}

type SecurityConfig struct {
	EnableCORS     bool     `mapstructure:"enable_cors"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"`
	Output        string `mapstructure:"output"`
	ConsoleOutput bool   `mapstructure:"console_output"`
	MaxSize       int    `mapstructure:"max_size"`
	MaxBackups    int    `mapstructure:"max_backups"`
	MaxAge        int    `mapstructure:"max_age"`
	Compress      bool   `mapstructure:"compress"`
}

// Load loads the configuration from file and environment.
func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 60 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120 * time.Second
	}

	if cfg.Upstream.TokenTimeout == 0 {
		cfg.Upstream.TokenTimeout = 10 * time.Second
	}
	if cfg.Upstream.ChatTimeout == 0 {
		cfg.Upstream.ChatTimeout = 30 * time.Second
	}
	if cfg.Upstream.EmbeddingTimeout == 0 {
		cfg.Upstream.EmbeddingTimeout = 10 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	// Console output enabled by default
	cfg.Logging.ConsoleOutput = true
	if cfg.Logging.MaxSize == 0 {
		cfg.Logging.MaxSize = 100
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = 10
	}
	if cfg.Logging.MaxAge == 0 {
		cfg.Logging.MaxAge = 30
	}

	if len(cfg.Security.AllowedOrigins) == 0 {
		cfg.Security.AllowedOrigins = []string{"*"}
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Upstream.TokenURL == "" {
		return fmt.Errorf("upstream token_url is required (TOKEN_URL)")
	}
	if cfg.Upstream.ChatURL == "" {
		return fmt.Errorf("upstream chat_url is required (CHAT_API_URL)")
	}
	if cfg.Upstream.EmbeddingURL == "" {
		return fmt.Errorf("upstream embedding_url is required (EMBEDDING_API_URL)")
	}
	return nil
}
