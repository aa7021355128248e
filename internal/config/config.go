package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	rediscache "github.com/davidbz/transly/internal/cache/redis"
	"github.com/davidbz/transly/internal/domain"
	"github.com/davidbz/transly/internal/observability"
	"github.com/davidbz/transly/internal/provider/openai"
)

// Config represents the service configuration.
type Config struct {
	Server ServerConfig
	CORS   CORSConfig
	Log    observability.LogConfig
	Engine EngineConfig
	OpenAI openai.Config
	Redis  rediscache.Config
}

// ServerConfig contains HTTP server settings. A zero WriteTimeout leaves
// streaming responses unbounded.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"0"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// EngineConfig holds the defaults applied when a request leaves a field empty.
type EngineConfig struct {
	Endpoint  string           `env:"TRANSLATE_ENDPOINT"   envDefault:"http://localhost:11434"`
	Model     string           `env:"TRANSLATE_MODEL"      envDefault:"qwen2.5:3b"`
	Provider  string           `env:"TRANSLATE_PROVIDER"   envDefault:"ollama"`
	ReplyMode domain.ReplyMode `env:"TRANSLATE_REPLY_MODE" envDefault:"bilingual"`
}

// Validate rejects values the engine cannot run with.
func (c *EngineConfig) Validate() error {
	switch c.ReplyMode {
	case domain.ReplyModeBilingual, domain.ReplyModeMirror:
	default:
		return fmt.Errorf("unsupported reply mode %q", c.ReplyMode)
	}
	if c.Endpoint == "" {
		return errors.New("endpoint cannot be empty")
	}
	if c.Model == "" {
		return errors.New("model cannot be empty")
	}
	return nil
}

// Settings converts the engine defaults for the translation service.
func (c *EngineConfig) Settings(cacheTTL time.Duration) domain.Settings {
	return domain.Settings{
		Endpoint:  c.Endpoint,
		Model:     c.Model,
		ReplyMode: c.ReplyMode,
		CacheTTL:  cacheTTL,
	}
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*observability.LogConfig
	*EngineConfig
	*openai.Config
	*rediscache.Config
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	if err := cfg.Engine.Validate(); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.Log,
		&cfg.Engine,
		&cfg.OpenAI,
		&cfg.Redis,
	}
}
