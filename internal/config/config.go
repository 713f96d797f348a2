// Package config loads Percept run configuration from files, environment
// variables, and command-line flags via viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Train holds everything a training run needs.
type Train struct {
	DataDir         string  `mapstructure:"data-dir"`         // Directory with MNIST IDX files
	Synthetic       bool    `mapstructure:"synthetic"`        // Use a synthetic dataset instead of files
	Limit           int     `mapstructure:"limit"`            // Max samples to load (0 = all)
	Epochs          int     `mapstructure:"epochs"`           // Passes over the training set
	BatchSize       int     `mapstructure:"batch-size"`       // Mini-batch size
	LR              float64 `mapstructure:"lr"`               // Learning rate
	Momentum        float64 `mapstructure:"momentum"`         // SGD momentum factor
	Hidden          []int   `mapstructure:"hidden"`           // Hidden-layer widths
	Seed            int64   `mapstructure:"seed"`             // Seed for init and shuffling
	Checkpoint      string  `mapstructure:"checkpoint"`       // Checkpoint output path ("" disables)
	CheckpointEvery int     `mapstructure:"checkpoint-every"` // Checkpoint every N epochs
	Resume          string  `mapstructure:"resume"`           // Checkpoint to resume from ("" disables)
	Validation      float64 `mapstructure:"validation"`       // Fraction of training data held out
}

// LoadTrain builds a Train config, layering (lowest to highest priority):
// defaults, an optional YAML config file, PERCEPT_* environment variables,
// and command-line flags.
func LoadTrain(cfgFile string, flags *pflag.FlagSet) (Train, error) {
	v := viper.New()

	v.SetDefault("data-dir", "data")
	v.SetDefault("synthetic", false)
	v.SetDefault("limit", 0)
	v.SetDefault("epochs", 5)
	v.SetDefault("batch-size", 32)
	v.SetDefault("lr", 0.01)
	v.SetDefault("momentum", 0.9)
	v.SetDefault("hidden", []int{128})
	v.SetDefault("seed", 42)
	v.SetDefault("checkpoint", "")
	v.SetDefault("checkpoint-every", 0)
	v.SetDefault("resume", "")
	v.SetDefault("validation", 0.0)

	v.SetEnvPrefix("PERCEPT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Train{}, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Train{}, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var cfg Train
	if err := v.Unmarshal(&cfg); err != nil {
		return Train{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Train{}, err
	}

	return cfg, nil
}

// Validate rejects configurations that cannot drive a run.
func (c Train) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0, got %d", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be > 0, got %d", c.BatchSize)
	}
	if c.LR <= 0 {
		return fmt.Errorf("lr must be > 0, got %g", c.LR)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return fmt.Errorf("momentum must be in [0, 1), got %g", c.Momentum)
	}
	for i, h := range c.Hidden {
		if h <= 0 {
			return fmt.Errorf("hidden[%d] must be > 0, got %d", i, h)
		}
	}
	if c.Validation < 0 || c.Validation >= 1 {
		return fmt.Errorf("validation must be in [0, 1), got %g", c.Validation)
	}
	return nil
}
