// Package config loads picocpu configuration.
//
// Configuration comes from a single YAML file named by the --config flag
// or the PICOCPU_CONFIG environment variable. There is no discovery: with
// neither set, Default is used as is. Command line flags override file
// values after loading.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/CristiGvl/picoCPUInfo/topology"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "PICOCPU_CONFIG"

// Output formats accepted by the show command.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config is the picocpu configuration.
type Config struct {
	// Tolerance is the relative frequency gap under which cores share a
	// group. Must be in [0, 1); zero groups only identical frequencies.
	Tolerance float64 `yaml:"tolerance"`

	// ProcRoot and SysRoot point at a captured /proc and /sys tree.
	// Empty means the live system.
	ProcRoot string `yaml:"proc_root"`
	SysRoot  string `yaml:"sys_root"`

	// Format is the default output format of the show command.
	Format string `yaml:"format"`

	// Server configures the HTTP API.
	Server ServerConfig `yaml:"server"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0
	Host string `yaml:"host"`
	// Port is the listen port. Default: 8080
	Port int `yaml:"port"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Tolerance: topology.DefaultTolerance,
		Format:    FormatText,
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
	}
}

// Load loads the file named by path, or by PICOCPU_CONFIG when path is
// empty. With neither set it returns Default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path. Unknown keys
// are rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ProcRoot = os.ExpandEnv(cfg.ProcRoot)
	cfg.SysRoot = os.ExpandEnv(cfg.SysRoot)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := (topology.Classifier{Tolerance: c.Tolerance}).Validate(); err != nil {
		errs = append(errs, err)
	}

	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("format must be %s, %s or %s, got %q", FormatText, FormatJSON, FormatYAML, c.Format))
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	return errors.Join(errs...)
}
