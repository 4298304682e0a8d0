// Package config loads runtime settings for botexec from a YAML file and
// BOTEXEC_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/botexec/code"
	"github.com/jonwraymond/botexec/exec"
	"github.com/jonwraymond/botexec/level"
	"github.com/jonwraymond/botexec/script"
)

// Config defines runtime settings for botexec.
type Config struct {
	// LevelsPath is a level file or a directory of level files.
	// Empty selects the built-in levels.
	LevelsPath string `yaml:"levelsPath"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	Limits Limits        `yaml:"limits"`
	Policy script.Policy `yaml:"policy"`
}

// Limits are the run budgets. Zero fields use the evaluator defaults.
type Limits struct {
	Timeout       time.Duration `yaml:"timeout"`
	MaxSteps      int           `yaml:"maxSteps"`
	MaxDepth      int           `yaml:"maxDepth"`
	MaxCollection int           `yaml:"maxCollection"`
	MaxActions    int           `yaml:"maxActions"`
	MaxOutput     int           `yaml:"maxOutput"`
	MaxSource     int           `yaml:"maxSource"`
}

// Load loads configuration from a YAML file and environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Limits:    Limits{Timeout: code.DefaultTimeout},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("BOTEXEC_LEVELS_PATH"); v != "" {
		cfg.LevelsPath = v
	}
	if v := os.Getenv("BOTEXEC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BOTEXEC_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("BOTEXEC_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("BOTEXEC_TIMEOUT: %w", err)
		}
		cfg.Limits.Timeout = d
	}
	if v := os.Getenv("BOTEXEC_MAX_STEPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("BOTEXEC_MAX_STEPS: %w", err)
		}
		cfg.Limits.MaxSteps = n
	}

	if cfg.LevelsPath != "" {
		if _, err := os.Stat(cfg.LevelsPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("levels path does not exist: %s", cfg.LevelsPath)
		}
	}

	return cfg, nil
}

// DefaultPath returns the default location for the CLI config file.
func DefaultPath() string {
	if path := os.Getenv("BOTEXEC_CONFIG"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".botexec", "config.yaml")
}

// Levels loads the configured level set, or nil for the built-in one.
func (c *Config) Levels() ([]level.Descriptor, error) {
	if c.LevelsPath == "" {
		return nil, nil
	}
	info, err := os.Stat(c.LevelsPath)
	if err != nil {
		return nil, fmt.Errorf("stat levels path: %w", err)
	}
	if info.IsDir() {
		return level.LoadDir(c.LevelsPath)
	}
	d, err := level.LoadFile(c.LevelsPath)
	if err != nil {
		return nil, err
	}
	return []level.Descriptor{d}, nil
}

// ExecOptions translates the configuration into exec.Options.
func (c *Config) ExecOptions(logger code.Logger) (exec.Options, error) {
	levels, err := c.Levels()
	if err != nil {
		return exec.Options{}, err
	}
	return exec.Options{
		Levels:        levels,
		Policy:        c.Policy,
		Timeout:       c.Limits.Timeout,
		MaxSteps:      c.Limits.MaxSteps,
		MaxDepth:      c.Limits.MaxDepth,
		MaxCollection: c.Limits.MaxCollection,
		MaxActions:    c.Limits.MaxActions,
		MaxOutput:     c.Limits.MaxOutput,
		MaxSource:     c.Limits.MaxSource,
		Logger:        logger,
	}, nil
}
