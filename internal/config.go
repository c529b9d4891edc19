package internal

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v2"
)

// Policy decides what happens when a fault occurs.
type Policy string

const (
	// Absorb logs the fault and continues with nil as the faulting
	// expression's value.
	Absorb Policy = "absorb"
	// Propagate aborts the outermost Closure call, which returns the fault.
	Propagate Policy = "propagate"
)

// Config controls a VM.
type Config struct {
	// LogLevel is one of debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`
	// MaxDepth limits nested block and method invocations.
	MaxDepth int `yaml:"max_depth"`
	// Faults sets fault policies.
	Faults struct {
		Native Policy `yaml:"native"`
		Depth  Policy `yaml:"depth"`
	} `yaml:"faults"`
	// ScratchDir, if not empty, is where the binder writes a scratch copy of
	// generated text while binding it.
	ScratchDir string `yaml:"scratch_dir"`
	// Cache, if not empty, is the path of a generated-source cache database.
	Cache string `yaml:"cache"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	var c Config
	c.LogLevel = "warn"
	c.MaxDepth = 4096
	c.Faults.Native = Absorb
	c.Faults.Depth = Propagate
	return c
}

// ParseConfig decodes YAML configuration. Fields not present keep their
// default values.
func ParseConfig(b []byte) (Config, error) {
	c := DefaultConfig()
	if err := yaml.UnmarshalStrict(b, &c); err != nil {
		return c, fmt.Errorf("parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// LoadConfig reads and decodes a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(b)
}

// Validate checks that the configuration's enumerated values are known.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	for _, p := range []Policy{c.Faults.Native, c.Faults.Depth} {
		if p != Absorb && p != Propagate {
			return fmt.Errorf("unknown fault policy %q", p)
		}
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, have %d", c.MaxDepth)
	}
	return nil
}

// Level returns the configured log level.
func (c Config) Level() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
}
