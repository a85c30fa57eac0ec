package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pable/gleague-scout/internal/normalize"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCOUT_"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New)
//  2. YAML file at path, or at $SCOUT_CONFIG when path is empty
//  3. env vars: SCOUT_LOG_LEVEL, SCOUT_CACHE_TTL, SCOUT_WAREHOUSE__PROJECT_ID, ...
//     (a double underscore separates nested keys)
func Load(_ context.Context, path string) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engines cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("cache_ttl must not be negative"))
	}
	if c.Profile.GamesCap < 0 {
		errs = append(errs, errors.New("profile.games_cap must not be negative"))
	}
	if c.Profile.MinutesPerGame <= 0 {
		errs = append(errs, errors.New("profile.minutes_per_game must be positive"))
	}
	if _, err := normalize.ParseStrategy(c.Profile.AnchorStrategy); err != nil {
		errs = append(errs, err)
	}
	if c.Classify.MaxAge <= 0 {
		errs = append(errs, errors.New("classify.max_age must be positive"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
