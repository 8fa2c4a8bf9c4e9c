// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package config handles the loading and validation of the guia configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const configEnv = "GUIA"

// Supported geolocation providers.
const (
	ProviderGeoClue = "geoclue"
	ProviderGPSD    = "gpsd"
	ProviderMock    = "mock"
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Intervals struct {
		PositionRefresh time.Duration `fig:"position_refresh" default:"2m"`
		Output          time.Duration `fig:"output" default:"30s"`
	} `fig:"intervals"`

	Geolocation struct {
		// Allowed values: geoclue, gpsd, mock
		Provider string `fig:"provider" default:"geoclue"`
		GPSDHost string `fig:"gpsd_host" default:"localhost"`
		GPSDPort string `fig:"gpsd_port" default:"2947"`

		Mock struct {
			Latitude  float64       `fig:"latitude"`
			Longitude float64       `fig:"longitude"`
			Accuracy  float64       `fig:"accuracy" default:"10"`
			Delay     time.Duration `fig:"delay" default:"100ms"`
		} `fig:"mock"`
	} `fig:"geolocation"`

	Geocoder struct {
		CacheTTLHit  time.Duration `fig:"cache_ttl_hit" default:"6h"`
		CacheTTLMiss time.Duration `fig:"cache_ttl_miss" default:"15m"`
	} `fig:"geocoder"`
}

// NewFromFile loads the configuration from the given path and file name.
func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

// New loads the configuration from defaults and environment variables only.
func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

// Validate checks the loaded configuration values and fills derived defaults.
func (c *Config) Validate() error {
	switch c.Geolocation.Provider {
	case ProviderGeoClue, ProviderGPSD, ProviderMock:
	default:
		return fmt.Errorf("invalid geolocation provider: %s", c.Geolocation.Provider)
	}
	if c.Intervals.PositionRefresh <= 0 {
		return fmt.Errorf("invalid position refresh interval: %s", c.Intervals.PositionRefresh)
	}
	if c.Intervals.Output <= 0 {
		return fmt.Errorf("invalid output interval: %s", c.Intervals.Output)
	}
	if c.Geocoder.CacheTTLHit <= 0 || c.Geocoder.CacheTTLMiss <= 0 {
		return fmt.Errorf("invalid geocoder cache TTLs: hit %s, miss %s", c.Geocoder.CacheTTLHit,
			c.Geocoder.CacheTTLMiss)
	}
	if c.Locale == "" {
		c.Locale = getLocale()
	}

	return nil
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
