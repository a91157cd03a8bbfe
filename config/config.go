// Package config loads the submission settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	client "github.com/caelisco/plenoptiform"
	"github.com/caelisco/plenoptiform/form"
	"github.com/caelisco/plenoptiform/options"
	"github.com/caelisco/plenoptiform/render"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint = client.DefaultEndpoint
	DefaultForm     = "f1"
)

var ErrInvalidSanitize = errors.New("invalid sanitize policy")

// Config holds everything needed to submit the form once.
type Config struct {
	BaseURL     string            `yaml:"base_url"`
	Endpoint    string            `yaml:"endpoint"`
	Form        string            `yaml:"form"`
	ResultID    string            `yaml:"result_id"`
	Timeout     string            `yaml:"timeout"`
	Verbose     bool              `yaml:"verbose"`
	Sanitize    string            `yaml:"sanitize"`    // none, ugc or strict
	Compression string            `yaml:"compression"` // none, gzip, deflate, br, snappy, lz4
	Identifier  string            `yaml:"identifier"`  // ulid, uuid or none
	Fields      map[string]string `yaml:"fields"`
}

// Default returns a configuration pointing at the plenoptisign CGI script
// with the reference camera parameters.
func Default() *Config {
	return &Config{
		Endpoint:   DefaultEndpoint,
		Form:       DefaultForm,
		ResultID:   render.DefaultElementID,
		Timeout:    "30s",
		Sanitize:   string(render.PolicyNone),
		Identifier: string(options.IdentifierULID),
		Fields:     form.Defaults(),
	}
}

// Load reads path over the defaults. Keys missing from the file keep their default.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	fields := cfg.Fields
	cfg.Fields = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	for k, v := range cfg.Fields {
		fields[k] = v
	}
	cfg.Fields = fields

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks the settings that would otherwise fail at submission time.
// Field values are never checked.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if _, err := render.ParsePolicy(c.Sanitize); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSanitize, err)
	}
	if _, err := options.ParseCompression(c.Compression); err != nil {
		return err
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	switch options.UniqueIdentifierType(c.Identifier) {
	case options.IdentifierDefault, options.IdentifierNone, options.IdentifierUUID, options.IdentifierULID:
	default:
		return fmt.Errorf("unknown identifier type %q", c.Identifier)
	}
	return nil
}

// TimeoutDuration parses Timeout. Empty means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}

// Policy returns the sanitize policy. Call Validate first.
func (c *Config) Policy() render.Policy {
	p, _ := render.ParsePolicy(c.Sanitize)
	return p
}

// Values returns the configured field values as a form source.
func (c *Config) Values() form.Values {
	return form.Values(c.Fields)
}

// Options builds the request options described by the configuration.
func (c *Config) Options() (*options.Option, error) {
	compression, err := options.ParseCompression(c.Compression)
	if err != nil {
		return nil, err
	}
	opt := options.New()
	opt.Verbose = c.Verbose
	opt.SetCompression(compression)
	opt.UniqueIdentifierType = options.UniqueIdentifierType(c.Identifier)
	return opt, nil
}
