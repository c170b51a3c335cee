package applejwt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	// AppleAudience is the audience Apple expects on client secrets.
	AppleAudience = "https://appleid.apple.com"

	// DefaultLifetime is the validity window of a generated client secret.
	DefaultLifetime = 180 * 24 * time.Hour

	// MaxLifetime is the longest validity Apple accepts (six months).
	MaxLifetime = 15777000 * time.Second
)

// Config holds the Apple developer identifiers used to build a client secret.
//
// The defaults are placeholders; real values come from the environment
// (or a .env file loaded by the commands).
type Config struct {
	// TeamID is the 10-character Apple developer team identifier (iss).
	TeamID string `env:"APPLE_TEAM_ID, default=TEAMID0000"`
	// KeyID identifies the Sign in with Apple private key (kid).
	KeyID string `env:"APPLE_KEY_ID, default=KEYID00000"`
	// ServiceID is the Services ID used as OAuth client_id (sub).
	ServiceID string `env:"APPLE_SERVICE_ID, default=com.example.app.signin"`
	// KeyFile is the path of the downloaded AuthKey_<KeyID>.p8 file.
	KeyFile  string        `env:"APPLE_KEY_FILE, default=AuthKey_KEYID00000.p8"`
	Audience string        `env:"APPLE_AUDIENCE, default=https://appleid.apple.com"`
	Lifetime time.Duration `env:"APPLE_SECRET_LIFETIME, default=4320h"`
}

// DefaultConfig returns the documented placeholder configuration.
func DefaultConfig() Config {
	cfg, err := loadConfig(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		// Only reachable if the struct tags above are malformed.
		panic(fmt.Sprintf("applejwt: default config: %v", err))
	}
	return cfg
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig(ctx context.Context) (Config, error) {
	return loadConfig(ctx, envconfig.OsLookuper())
}

// LoadConfigFrom reads the configuration using the supplied lookuper.
func LoadConfigFrom(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	return loadConfig(ctx, lookuper)
}

func loadConfig(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return Config{}, newError(ErrCodeInvalidConfig, err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return Config{}, newError(ErrCodeInvalidConfig, err)
	}
	return cfg, nil
}

// normalize sets default values for optional fields.
func (c *Config) normalize() {
	c.TeamID = strings.TrimSpace(c.TeamID)
	c.KeyID = strings.TrimSpace(c.KeyID)
	c.ServiceID = strings.TrimSpace(c.ServiceID)
	if c.Audience == "" {
		c.Audience = AppleAudience
	}
	if c.Lifetime == 0 {
		c.Lifetime = DefaultLifetime
	}
}

// validate ensures the configuration is usable.
func (c Config) validate() error {
	switch {
	case c.TeamID == "":
		return errors.New("team id is required")
	case c.KeyID == "":
		return errors.New("key id is required")
	case c.ServiceID == "":
		return errors.New("service id is required")
	case c.Lifetime <= 0:
		return fmt.Errorf("lifetime %s must be positive", c.Lifetime)
	case c.Lifetime%time.Second != 0:
		return fmt.Errorf("lifetime %s is not a whole number of seconds", c.Lifetime)
	case c.Lifetime > MaxLifetime:
		return fmt.Errorf("lifetime %s exceeds maximum %s", c.Lifetime, MaxLifetime)
	}
	return nil
}
