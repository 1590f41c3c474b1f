// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores csvflow settings in the XDG config dir.
// config.yaml is preferred; a legacy config.json is still honoured.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"csvflow/cli/internal/xdg"
)

const (
	// DefaultAPIURL is the processing backend used when nothing is configured.
	DefaultAPIURL = "http://localhost:8000"
	// DefaultTransformOp is sent when a transform request leaves the operation empty.
	DefaultTransformOp = "uppercase"
	// DefaultListen is the web UI bind address.
	DefaultListen = "127.0.0.1:8080"
	// DefaultMaxUpload bounds multipart uploads accepted by the web UI.
	DefaultMaxUpload int64 = 32 << 20
)

// Environment overrides, applied after the file and before flags.
const (
	EnvAPIURL   = "CSVFLOW_API_URL"
	EnvLogLevel = "CSVFLOW_LOG_LEVEL"
)

// Config holds csvflow settings.
type Config struct {
	APIURL      string        `json:"api_url" yaml:"api_url"`
	LogLevel    string        `json:"log_level" yaml:"log_level"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	TransformOp string        `json:"transform_default" yaml:"transform_default"`
	Endpoints   Endpoints     `json:"endpoints" yaml:"endpoints"`
	Web         WebConfig     `json:"web" yaml:"web"`
}

// Endpoints holds the backend REST paths relative to APIURL.
type Endpoints struct {
	Process  string `json:"process" yaml:"process"`
	Download string `json:"download" yaml:"download"`
	Health   string `json:"health" yaml:"health"`
}

// WebConfig holds settings for `csvflow serve`.
type WebConfig struct {
	Listen    string `json:"listen" yaml:"listen"`
	MaxUpload int64  `json:"max_upload" yaml:"max_upload"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:      DefaultAPIURL,
		LogLevel:    "info",
		Timeout:     30 * time.Second,
		TransformOp: DefaultTransformOp,
		Endpoints:   DefaultEndpoints(),
		Web: WebConfig{
			Listen:    DefaultListen,
			MaxUpload: DefaultMaxUpload,
		},
	}
}

// DefaultEndpoints returns the paths of the processing API.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Process:  "/api/process/csv",
		Download: "/api/download/csv",
		Health:   "/health",
	}
}

// dir is swapped in tests.
var dir = xdg.ConfigDir

// ErrNoConfigDir is returned by Load when the config directory cannot be
// resolved. The Config returned alongside it is still usable: defaults with
// environment overrides applied.
var ErrNoConfigDir = errors.New("config directory unavailable")

// Load reads configuration; a missing file returns defaults.
// Environment overrides are applied on top of whatever was loaded.
func Load() (Config, error) {
	d, err := dir()
	if err != nil {
		c := Default()
		applyEnv(&c)
		return c, fmt.Errorf("%w: %w", ErrNoConfigDir, err)
	}
	c, err := loadFrom(d)
	if err != nil {
		return c, err
	}
	applyEnv(&c)
	return c, nil
}

func loadFrom(d string) (Config, error) {
	c := Default()

	data, err := os.ReadFile(filepath.Join(d, "config.yaml"))
	if err == nil {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, err
		}
		c.fillDefaults()
		return c, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return c, err
	}

	data, err = os.ReadFile(filepath.Join(d, "config.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	c.fillDefaults()
	return c, nil
}

// fillDefaults restores zero values a partial file left behind.
func (c *Config) fillDefaults() {
	def := Default()
	if strings.TrimSpace(c.APIURL) == "" {
		c.APIURL = def.APIURL
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.TransformOp == "" {
		c.TransformOp = def.TransformOp
	}
	if c.Endpoints.Process == "" {
		c.Endpoints.Process = def.Endpoints.Process
	}
	if c.Endpoints.Download == "" {
		c.Endpoints.Download = def.Endpoints.Download
	}
	if c.Endpoints.Health == "" {
		c.Endpoints.Health = def.Endpoints.Health
	}
	if c.Web.Listen == "" {
		c.Web.Listen = def.Web.Listen
	}
	if c.Web.MaxUpload <= 0 {
		c.Web.MaxUpload = def.Web.MaxUpload
	}
}

func applyEnv(c *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
}

// Save writes configuration as yaml with 0600 permissions.
func Save(c Config) error {
	d, err := dir()
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d, "config.yaml"), b, 0o600)
}
