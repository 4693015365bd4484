// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jcodagnone/stationfinder/i18n"
	"github.com/jcodagnone/stationfinder/kiosk"
	"github.com/jcodagnone/stationfinder/locate"
	"gopkg.in/yaml.v3"
)

const (
	GeocoderUpstream = "upstream"
	GeocoderGoogle   = "google"
)

// Config holds the application configuration.
type Config struct {
	Listen   string `yaml:"listen,omitempty"`
	BasePath string `yaml:"base_path,omitempty"`

	// Upstream is the station backend serving /api/public/locations and
	// /api/geocode.
	Upstream  string `yaml:"upstream,omitempty"`
	UserAgent string `yaml:"user_agent,omitempty"`

	RadiusMiles   float64       `yaml:"radius_miles,omitempty"`
	DeviceTimeout time.Duration `yaml:"device_timeout,omitempty"`
	Countries     []string      `yaml:"countries,omitempty"`
	Locale        string        `yaml:"locale,omitempty"`

	Geocoder GeocoderConfig `yaml:"geocoder,omitempty"`

	// SessionSecret signs the session cookie.
	SessionSecret string        `yaml:"session_secret,omitempty"`
	SessionIdle   time.Duration `yaml:"session_idle,omitempty"`
}

// GeocoderConfig selects and configures the postal code geocoder.
type GeocoderConfig struct {
	Provider     string `yaml:"provider,omitempty"` // upstream or google
	GoogleAPIKey string `yaml:"google_api_key,omitempty"`
	// GoogleKeyName is the display name of the key looked up through ADC.
	GoogleKeyName string `yaml:"google_key_name,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Listen:        "localhost:8080",
		BasePath:      "/stationfinder",
		Upstream:      "https://chargerentstations.com",
		RadiusMiles:   kiosk.DefaultRadiusMiles,
		DeviceTimeout: locate.DefaultDeviceTimeout,
		Countries:     []string{"us", "ca", "fr"},
		Locale:        string(i18n.DefaultLocale),
		Geocoder: GeocoderConfig{
			Provider:      GeocoderUpstream,
			GoogleKeyName: locate.DefaultKeyDisplayName,
		},
		SessionIdle: 30 * time.Minute,
	}
}

// DefaultConfigPath returns the default config file path (local directory).
func DefaultConfigPath() string {
	return "stationfinder.yaml"
}

// Load reads the config file over the defaults. A missing file is not an
// error.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to file.
func Save(configPath string, cfg *Config) error {
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("STATIONFINDER_SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}

	if v := os.Getenv("STATIONFINDER_UPSTREAM"); v != "" {
		c.Upstream = v
	}
}

// Validate checks the values a server cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.Upstream); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("upstream %q is not an absolute URL", c.Upstream))
	}

	if c.RadiusMiles <= 0 {
		errs = append(errs, fmt.Errorf("radius_miles must be positive, got %v", c.RadiusMiles))
	}

	if c.DeviceTimeout <= 0 {
		errs = append(errs, fmt.Errorf("device_timeout must be positive, got %v", c.DeviceTimeout))
	}

	switch c.Geocoder.Provider {
	case GeocoderUpstream, GeocoderGoogle:
	default:
		errs = append(errs, fmt.Errorf("unknown geocoder provider %q", c.Geocoder.Provider))
	}

	if _, ok := i18n.Parse(c.Locale); !ok {
		errs = append(errs, fmt.Errorf("unsupported locale %q", c.Locale))
	}

	for _, country := range c.Countries {
		if _, ok := locate.NormalizeCountry(country); !ok {
			errs = append(errs, fmt.Errorf("unknown country %q", country))
		}
	}

	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		errs = append(errs, fmt.Errorf("base_path %q must start with /", c.BasePath))
	}

	return errors.Join(errs...)
}

// NormalizedBasePath returns BasePath without a trailing slash; "/" becomes
// "".
func (c *Config) NormalizedBasePath() string {
	return strings.TrimRight(c.BasePath, "/")
}

// DefaultLocale returns the configured fallback locale.
func (c *Config) DefaultLocale() i18n.Locale {
	if l, ok := i18n.Parse(c.Locale); ok {
		return l
	}

	return i18n.DefaultLocale
}
