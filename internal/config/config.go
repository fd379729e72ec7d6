// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package config loads process configuration. Precedence, lowest to
// highest: flag defaults, YAML config file, environment overrides for
// secrets, explicitly set flags. The result is constructed once at startup
// and passed by reference; nothing reads ambient state afterwards.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Environment variables honored as overrides for secret-bearing options.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvJWTSecret   = "AUTHGATE_JWT_SECRET"
)

// Config holds all process-wide options. It is immutable after Load.
type Config struct {
	ListenAddr   string        `koanf:"listen_addr"`
	MetricsAddr  string        `koanf:"metrics_addr"`
	DatabaseURL  string        `koanf:"database_url"`
	JWTSecret    string        `koanf:"jwt_secret"`
	TokenTTL     time.Duration `koanf:"token_ttl"`
	CookieMaxAge time.Duration `koanf:"cookie_max_age"`
	LogFormat    string        `koanf:"log_format"`
}

// Load builds a Config from an optional YAML file and a flag set. Missing
// required options make Load fail; startup treats that as fatal.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	// Flag names use dashes; config keys use underscores. Unchanged flags
	// only fill keys the file did not set.
	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("source", "flags").
				Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}

	// Secrets prefer the environment so they stay out of files and argv.
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		cfg.JWTSecret = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that all required options are present and sane.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("listen address is required")
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (flag, config file, or %s)", EnvDatabaseURL)
	}
	if c.JWTSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("JWT signing secret is required (flag, config file, or %s)", EnvJWTSecret)
	}
	if c.TokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").With("token_ttl", c.TokenTTL).Errorf("token TTL must be positive")
	}
	if c.CookieMaxAge <= 0 {
		return oops.Code("CONFIG_INVALID").With("cookie_max_age", c.CookieMaxAge).Errorf("cookie max-age must be positive")
	}
	if c.LogFormat != "" && c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").With("log_format", c.LogFormat).Errorf("log format must be json or text")
	}
	return nil
}
