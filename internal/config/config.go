package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Configuration holds the static settings needed to run the server.
type Configuration struct {
	Port         string        `env:"APP_PORT" envDefault:"8080"`
	DataDir      string        `env:"DATA_DIR" envDefault:"./data"`
	LegacyBucket string        `env:"LEGACY_BUCKET" envDefault:"invoice/null"` // relative to DataDir
	JWTSecret    string        `env:"JWT_SECRET,required"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	MaxBodyBytes int64         `env:"MAX_BODY_BYTES" envDefault:"52428800"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"LOG_FILE"`

	SkipMigration bool `env:"SKIP_MIGRATION" envDefault:"false"`
}

// Load reads an optional env file and parses the environment. A missing env
// file is fine; process environment alone is enough.
func Load(files ...string) (*Configuration, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	cfg := &Configuration{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Configuration) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("DATA_DIR must not be empty")
	}
	if strings.TrimSpace(c.LegacyBucket) == "" {
		return errors.New("LEGACY_BUCKET must not be empty")
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("MAX_BODY_BYTES must be positive")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT: %s", c.LogFormat)
	}
	return nil
}
