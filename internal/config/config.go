// Package config loads the application configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/soochol/taskd/internal/taskd"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Executor  ExecutorConfig  `yaml:"executor"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// SchedulerConfig holds scheduler bounds.
type SchedulerConfig struct {
	MaxConcurrentTasks int      `yaml:"max_concurrent_tasks"` // default: 10
	HistorySize        int      `yaml:"history_size"`         // default: 1000
	StopGrace          Duration `yaml:"stop_grace"`           // default: 5s
}

// ExecutorConfig holds action execution defaults, applied when an
// action carries no retry policy or timeout of its own.
type ExecutorConfig struct {
	DefaultTimeout Duration    `yaml:"default_timeout"` // default: 30s
	DefaultRetry   RetryConfig `yaml:"default_retry"`
}

// RetryConfig mirrors taskd.RetryPolicy in YAML-friendly form.
type RetryConfig struct {
	MaxAttempts  int      `yaml:"max_attempts"`
	InitialDelay Duration `yaml:"initial_delay"`
	MaxDelay     Duration `yaml:"max_delay"`
	Strategy     string   `yaml:"backoff_strategy"`
	Multiplier   float64  `yaml:"multiplier"`
}

// Policy converts the retry section to a taskd.RetryPolicy.
func (r RetryConfig) Policy() taskd.RetryPolicy {
	return taskd.RetryPolicy{
		MaxAttempts:  r.MaxAttempts,
		InitialDelay: r.InitialDelay.Std(),
		MaxDelay:     r.MaxDelay.Std(),
		Strategy:     taskd.BackoffStrategy(r.Strategy),
		Multiplier:   r.Multiplier,
	}
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Scheduler: SchedulerConfig{
			MaxConcurrentTasks: 10,
			HistorySize:        1000,
			StopGrace:          Duration(5 * time.Second),
		},
		Executor: ExecutorConfig{
			DefaultTimeout: Duration(30 * time.Second),
			DefaultRetry: RetryConfig{
				MaxAttempts:  3,
				InitialDelay: Duration(time.Second),
				MaxDelay:     Duration(5 * time.Minute),
				Strategy:     string(taskd.BackoffExponential),
				Multiplier:   2.0,
			},
		},
	}
}

// Load reads a YAML configuration file at path and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// LoadDefault tries to load "config.yaml" from the current directory.
// If the file does not exist, it returns sensible defaults.
// Any other error (e.g. permission denied, malformed YAML) is returned.
func LoadDefault() (*Config, error) {
	cfg, err := Load("config.yaml")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults(), nil
		}
		return nil, err
	}
	return cfg, nil
}
