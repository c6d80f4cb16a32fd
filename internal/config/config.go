// Package config holds unframe harness configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Defaults for execution settings.
const (
	DefaultTimeout = 0 // seconds per task, 0 waits forever
	DefaultWorkDir = "."
	DefaultJobs    = 1
)

// Config holds settings loaded from an optional unframe.yaml file.
type Config struct {
	Run RunConfig `mapstructure:"run"`
}

// RunConfig holds execution defaults that flags may override.
type RunConfig struct {
	// Timeout is the per-task wall-clock limit in seconds. Zero means
	// wait forever.
	Timeout int `mapstructure:"timeout"`

	// WorkDir is the working directory tasks run in unless a document
	// overrides it.
	WorkDir string `mapstructure:"workdir"`

	// Output is the default performance log directory.
	Output string `mapstructure:"output"`

	// Jobs is the worker pool width for a test's tasks.
	Jobs int `mapstructure:"jobs"`
}

// Options is the per-invocation configuration record assembled from CLI
// flags. The harness core consumes this, not the flag set.
type Options struct {
	Dir       string
	Tag       string
	MaxTime   time.Duration
	OutputDir string
	DryRun    bool
	Verbose   bool
	Jobs      int
	ExtraArgs map[string]interface{}
}

// TaskTimeout returns the per-task timeout as a duration.
func (c *Config) TaskTimeout() time.Duration {
	return time.Duration(c.Run.Timeout) * time.Second
}

// LoadConfigWithFile loads configuration from a specific file if provided,
// otherwise falls back to LoadConfig with the given directory.
func LoadConfigWithFile(dir, configFile string) (*Config, error) {
	if configFile != "" {
		return LoadConfigFromPath(configFile)
	}
	return LoadConfig(dir)
}

// LoadConfig loads configuration from unframe.yaml in the given directory.
// If no config file exists, defaults are returned.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("unframe")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFromPath loads configuration from a specific file path.
func LoadConfigFromPath(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("run.timeout", DefaultTimeout)
	v.SetDefault("run.workdir", DefaultWorkDir)
	v.SetDefault("run.output", "")
	v.SetDefault("run.jobs", DefaultJobs)
}

// ParseExtraArgs decodes the --extra-args flag value. It must be a JSON
// object; the result is exposed to every rendering context under the
// extra_args namespace.
func ParseExtraArgs(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return map[string]interface{}{}, nil
	}
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("invalid --extra-args JSON: %w", err)
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return args, nil
}
