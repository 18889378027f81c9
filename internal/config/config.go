// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// DevSecret is the signing secret used when JWT_SECRET is unset. It is only
// suitable for local development.
const DevSecret = "your_jwt_secret"

// Supported account stores.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Config holds runtime settings for the accounts service.
type Config struct {
	Addr          string        `env:"ADDR"           envDefault:":8080"`
	JWTSecret     string        `env:"JWT_SECRET"     envDefault:"your_jwt_secret"`
	TokenTTL      time.Duration `env:"TOKEN_TTL"      envDefault:"24h"`
	BcryptCost    int           `env:"BCRYPT_COST"    envDefault:"10"`
	Store         string        `env:"STORE"          envDefault:"memory"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	MongoDatabase string        `env:"MONGO_DATABASE" envDefault:"myapp"`
	LogLevel      string        `env:"LOG_LEVEL"      envDefault:"info"`
	LogFormat     string        `env:"LOG_FORMAT"     envDefault:"json"`
	OIDC          OIDC
}

// OIDC configures federated login against an OpenID Connect provider.
type OIDC struct {
	Issuer       string   `env:"OIDC_ISSUER"`
	ClientID     string   `env:"OIDC_CLIENT_ID"`
	ClientSecret string   `env:"OIDC_CLIENT_SECRET"`
	RedirectURL  string   `env:"OIDC_REDIRECT_URL"`
	Scopes       []string `env:"OIDC_SCOPES" envSeparator:"," envDefault:"openid,profile,email"`
}

// Enabled reports whether enough settings are present to run the SSO flow.
func (o OIDC) Enabled() bool {
	return o.Issuer != "" && o.ClientID != "" && o.RedirectURL != ""
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	if c.BcryptCost < bcrypt.DefaultCost {
		c.BcryptCost = bcrypt.DefaultCost
	}
	if c.BcryptCost > bcrypt.MaxCost {
		c.BcryptCost = bcrypt.MaxCost
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = 24 * time.Hour
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres, StoreMongo:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for store %q", c.Store)
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	return nil
}

// InsecureSecret reports whether the development signing secret is in use.
func (c *Config) InsecureSecret() bool {
	return c.JWTSecret == DevSecret
}
