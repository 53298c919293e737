// Package cliconfig assembles process configuration for the transpipe
// roles from defaults, an optional TOML file, TRANSPIPE_* environment
// variables, and command-line flags, in that order of precedence.
package cliconfig

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"transpipe/internal/pipeline"
	"transpipe/internal/transport"
)

// Defaults for a local single-host run.
const (
	DefaultRelayEndpoint    = "nats://127.0.0.1:4222/transpipe.symmetric"
	DefaultResolverEndpoint = "nats://127.0.0.1:4222/transpipe.he"
)

// Config holds CLI configuration shared by every role.
type Config struct {
	Variant      string
	DeliveryMode string
	IntegerSize  int
	BatchSize    int
	BatchNumber  int

	DataDir     string
	KeyDir      string
	TimelineDir string

	RelayEndpoint    string
	ResolverEndpoint string

	MetricsAddr    string
	SampleInterval time.Duration

	Linger time.Duration
	Settle time.Duration

	Wait            bool
	RemoveAfterSend bool
	ArchiveDrained  bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Variant:          "HHE",
		DeliveryMode:     "STREAMING",
		IntegerSize:      8,
		BatchSize:        4,
		BatchNumber:      25,
		DataDir:          "data",
		KeyDir:           "keys",
		RelayEndpoint:    DefaultRelayEndpoint,
		ResolverEndpoint: DefaultResolverEndpoint,
		SampleInterval:   time.Second,
		Linger:           time.Second,
		Settle:           300 * time.Millisecond,
	}
}

// Validate checks the configuration and sets derived defaults. It runs
// before any I/O, so a bad value never leaves half a run behind.
func (c *Config) Validate() error {
	if _, err := c.PipelineParams(); err != nil {
		return err
	}
	if c.DataDir == "" {
		return fmt.Errorf("data-dir is required")
	}
	if c.KeyDir == "" {
		return fmt.Errorf("key-dir is required")
	}
	if c.TimelineDir == "" {
		c.TimelineDir = filepath.Join(c.DataDir, "timelines")
	}
	if _, err := transport.ParseEndpoint(c.RelayEndpoint); err != nil {
		return fmt.Errorf("relay-endpoint: %w", err)
	}
	if _, err := transport.ParseEndpoint(c.ResolverEndpoint); err != nil {
		return fmt.Errorf("resolver-endpoint: %w", err)
	}
	if c.Linger <= 0 {
		return fmt.Errorf("linger must be positive")
	}
	return nil
}

// PipelineParams converts the raw configuration strings into the typed
// run parameters. All string matching happens here, once.
func (c *Config) PipelineParams() (pipeline.Params, error) {
	variant, err := pipeline.ParseVariant(c.Variant)
	if err != nil {
		return pipeline.Params{}, err
	}
	mode, err := pipeline.ParseDeliveryMode(c.DeliveryMode)
	if err != nil {
		return pipeline.Params{}, err
	}
	intSize, err := pipeline.ParseIntegerSize(c.IntegerSize)
	if err != nil {
		return pipeline.Params{}, err
	}
	p := pipeline.Params{
		Variant:     variant,
		Mode:        mode,
		IntSize:     intSize,
		BatchSize:   c.BatchSize,
		BatchNumber: c.BatchNumber,
	}
	if err := p.Validate(); err != nil {
		return pipeline.Params{}, err
	}
	return p, nil
}

// SymmetricDir is where the symmetric-ciphertext stage files live.
func (c *Config) SymmetricDir() string { return filepath.Join(c.DataDir, "data_symmetric") }

// HEDir is where the homomorphic-ciphertext stage files live.
func (c *Config) HEDir() string { return filepath.Join(c.DataDir, "data_he") }

// PlainDir is where the resolver's plaintext output lands.
func (c *Config) PlainDir() string { return filepath.Join(c.DataDir, "data_plain") }

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not
// changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if
// valid. Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
