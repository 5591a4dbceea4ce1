// Package config loads server settings from an optional YAML file and
// QWSV_-prefixed environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every env tag.
const EnvPrefix = "QWSV_"

// Config holds server-level settings.
type Config struct {
	// --- Limits ---
	MaxClients        int `yaml:"max_clients" env:"MAX_CLIENTS"`
	ReliableBudget    int `yaml:"reliable_budget" env:"RELIABLE_BUDGET"`
	DatagramSize      int `yaml:"datagram_size" env:"DATAGRAM_SIZE"`
	SignonSize        int `yaml:"signon_size" env:"SIGNON_SIZE"`
	MulticastSize     int `yaml:"multicast_size" env:"MULTICAST_SIZE"`
	StuffTextMax      int `yaml:"stufftext_max" env:"STUFFTEXT_MAX"`
	MaxDynamicStrings int `yaml:"max_dynamic_strings" env:"MAX_DYNAMIC_STRINGS"`
	RedirectSize      int `yaml:"redirect_size" env:"REDIRECT_SIZE"`

	// --- Behaviour ---
	SpecPrint   int `yaml:"spec_print" env:"SPEC_PRINT"`       // sv_specprint category mask
	FragLogType int `yaml:"frag_log_type" env:"FRAG_LOG_TYPE"` // 0 = new style, else old style

	// --- Paths ---
	GameDir     string `yaml:"game_dir" env:"GAME_DIR"`
	MapsDir     string `yaml:"maps_dir" env:"MAPS_DIR"`
	DemoDir     string `yaml:"demo_dir" env:"DEMO_DIR"`
	RecordingDB string `yaml:"recording_db" env:"RECORDING_DB"` // bbolt file, "" = disabled
	FragDB      string `yaml:"frag_db" env:"FRAG_DB"`           // SQLite file, "" = disabled

	// --- Metrics ---
	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"` // "" = disabled

	// Cvars seeds console variables. From the environment use
	// QWSV_CVARS=name:value,name:value.
	Cvars map[string]string `yaml:"cvars" env:"CVARS"`
}

// Default returns the stock server settings.
func Default() *Config {
	return &Config{
		MaxClients:        32,
		ReliableBudget:    1450,
		DatagramSize:      1450,
		SignonSize:        8192,
		MulticastSize:     1450,
		StuffTextMax:      1024,
		MaxDynamicStrings: 256,
		RedirectSize:      8000,
		SpecPrint:         0,
		GameDir:           "qw",
		MapsDir:           filepath.Join("qw", "maps"),
		DemoDir:           "demos",
		RecordingDB:       "recordings.db",
		FragDB:            "frags.db",
		Cvars:             map[string]string{},
	}
}

// Load returns Default overlaid with the YAML file at path, when path is
// not empty, and then with the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if cfg.Cvars == nil {
		cfg.Cvars = map[string]string{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every limit is usable.
func (c *Config) Validate() error {
	var errs []error
	// Recording targets are 5 bits wide.
	if c.MaxClients < 1 || c.MaxClients > 32 {
		errs = append(errs, fmt.Errorf("max_clients %d outside [1,32]", c.MaxClients))
	}
	for name, v := range map[string]int{
		"reliable_budget":     c.ReliableBudget,
		"datagram_size":       c.DatagramSize,
		"signon_size":         c.SignonSize,
		"multicast_size":      c.MulticastSize,
		"stufftext_max":       c.StuffTextMax,
		"max_dynamic_strings": c.MaxDynamicStrings,
		"redirect_size":       c.RedirectSize,
	} {
		if v < 1 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
