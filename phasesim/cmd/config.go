package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "PHASESIM_"

// ErrInvalidConfig is returned for configurations that cannot describe a run.
var ErrInvalidConfig = errors.New("invalid config")

// ComponentConfig describes one component of the counting example.
type ComponentConfig struct {
	Name         string `yaml:"name"`
	Kind         string `yaml:"kind"`
	Step         *int   `yaml:"step"`
	Value        any    `yaml:"value"`
	ReportBlanks bool   `yaml:"report_blanks"`
}

// MonitorConfig configures the HTTP monitor.
type MonitorConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
	Browser bool `yaml:"browser"`
}

// RecordingConfig configures the SQLite recording of a run.
type RecordingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	TracePhases bool   `yaml:"trace_phases"`
}

// Config describes a run of the counting example.
type Config struct {
	ID          string            `yaml:"id"`
	Ticks       uint64            `yaml:"ticks"`
	ExactBound  bool              `yaml:"exact_bound"`
	TickDelay   time.Duration     `yaml:"tick_delay"`
	CountPhases bool              `yaml:"count_phases"`
	Border      string            `yaml:"border"`
	Components  []ComponentConfig `yaml:"components"`
	Monitor     MonitorConfig     `yaml:"monitor"`
	Recording   RecordingConfig   `yaml:"recording"`
}

// LoadConfig reads a YAML config file. Unknown fields are errors. A relative
// border path is resolved against the directory of the config file.
// Environment variables starting with PHASESIM_ override the file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	if cfg.Border != "" && !filepath.IsAbs(cfg.Border) {
		cfg.Border = filepath.Join(filepath.Dir(path), cfg.Border)
	}

	return cfg, nil
}

// ParseConfig parses the content of a config file and applies the
// environment overrides.
func ParseConfig(data []byte) (Config, error) {
	cfg := Config{}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var err error

	if v, ok := lookup(envPrefix + "ID"); ok {
		c.ID = v
	}

	if v, ok := lookup(envPrefix + "TICKS"); ok {
		c.Ticks, err = strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sTICKS: %w", envPrefix, err)
		}
	}

	if v, ok := lookup(envPrefix + "TICK_DELAY"); ok {
		c.TickDelay, err = time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTICK_DELAY: %w", envPrefix, err)
		}
	}

	if v, ok := lookup(envPrefix + "MONITOR_PORT"); ok {
		c.Monitor.Port, err = strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMONITOR_PORT: %w", envPrefix, err)
		}

		c.Monitor.Enabled = true
	}

	if v, ok := lookup(envPrefix + "RECORD"); ok {
		c.Recording.Path = v
		c.Recording.Enabled = true
	}

	return nil
}

// Validate checks that the config describes a run that can finish.
func (c *Config) Validate() error {
	if c.Ticks == 0 {
		return fmt.Errorf("%w: ticks must be positive", ErrInvalidConfig)
	}

	if c.TickDelay < 0 {
		return fmt.Errorf("%w: tick delay must not be negative",
			ErrInvalidConfig)
	}

	if len(c.Components) == 0 {
		return fmt.Errorf("%w: no components", ErrInvalidConfig)
	}

	for i, comp := range c.Components {
		if comp.Name == "" {
			return fmt.Errorf("%w: component %d has no name",
				ErrInvalidConfig, i)
		}

		if comp.Kind == "" {
			return fmt.Errorf("%w: component %s has no kind",
				ErrInvalidConfig, comp.Name)
		}
	}

	return nil
}
