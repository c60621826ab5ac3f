package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gatherhall/address-engine/internal/cachestore"
)

// Config holds the full application configuration.
type Config struct {
	Google GoogleConfig `yaml:"google" mapstructure:"google"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Retry  RetryConfig  `yaml:"retry" mapstructure:"retry"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// GoogleConfig holds Google Maps Platform credentials and client tuning.
type GoogleConfig struct {
	Key                 string  `yaml:"key" mapstructure:"key"`
	Language            string  `yaml:"language" mapstructure:"language"`
	Region              string  `yaml:"region" mapstructure:"region"`
	RateLimit           float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs         int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	BreakerThreshold    int     `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldownSecs int     `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
}

// CacheConfig configures the provider response cache backend.
type CacheConfig struct {
	Driver      string                `yaml:"driver" mapstructure:"driver"`
	Path        string                `yaml:"path" mapstructure:"path"`
	DatabaseURL string                `yaml:"database_url" mapstructure:"database_url"`
	TTLHours    int                   `yaml:"ttl_hours" mapstructure:"ttl_hours"`
	MaxEntries  int                   `yaml:"max_entries" mapstructure:"max_entries"`
	Pool        cachestore.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// RetryConfig configures retries of transient provider failures.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// ServerConfig configures the resolution HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ADDRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("google.rate_limit", 50.0)
	v.SetDefault("google.timeout_secs", 15)
	v.SetDefault("google.breaker_threshold", 5)
	v.SetDefault("google.breaker_cooldown_secs", 30)
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.path", "address-cache.db")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("cache.max_entries", 4096)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 250)
	v.SetDefault("retry.max_backoff_ms", 2000)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable for the given mode:
// "resolve" for one-shot CLI lookups, "serve" for the HTTP server, and
// "cache" for cache maintenance.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "resolve":
		problems = append(problems, c.googleProblems()...)
	case "serve":
		problems = append(problems, c.googleProblems()...)
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "cache":
		if c.Cache.Driver != "sqlite" && c.Cache.Driver != "postgres" {
			problems = append(problems, "cache.driver must be sqlite or postgres")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Cache.Driver {
	case "off", "memory":
	case "sqlite":
		if c.Cache.Path == "" {
			problems = append(problems, "cache.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Cache.DatabaseURL == "" {
			problems = append(problems, "cache.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "cache.driver must be one of off, memory, sqlite, postgres")
	}

	if c.Cache.Driver != "off" && c.Cache.TTLHours <= 0 {
		problems = append(problems, "cache.ttl_hours must be > 0")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s mode: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) googleProblems() []string {
	var problems []string
	if c.Google.Key == "" {
		problems = append(problems, "google.key is required")
	}
	if c.Google.RateLimit <= 0 {
		problems = append(problems, "google.rate_limit must be > 0")
	}
	if c.Google.TimeoutSecs <= 0 {
		problems = append(problems, "google.timeout_secs must be > 0")
	}
	if c.Retry.MaxAttempts < 1 {
		problems = append(problems, "retry.max_attempts must be >= 1")
	}
	return problems
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
