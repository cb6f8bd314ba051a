// Package config loads and validates training run configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kiln-ml/kiln/internal/tensor"
)

// Config describes one training run. Zero values fall back to defaults in
// Validate, so a minimal YAML file only needs to override what it cares
// about.
type Config struct {
	// Loop shape.
	Epochs    int `yaml:"epochs"`
	BatchSize int `yaml:"batch_size"`
	Workers   int `yaml:"workers"`

	// Optimizer.
	Optimizer string  `yaml:"optimizer"` // "sgd" or "adam"
	LR        float32 `yaml:"lr"`
	Momentum  float32 `yaml:"momentum"`

	// Monte-Carlo prediction.
	Iterations         int  `yaml:"iterations"`
	AveragePredictions int  `yaml:"average_predictions"`
	Half               bool `yaml:"half"`

	// Placement. "cpu" or "accelerator".
	Device string `yaml:"device"`

	Seed int64 `yaml:"seed"`

	// Artifacts.
	CheckpointPath string `yaml:"checkpoint_path"`
	PlotPath       string `yaml:"plot_path"`
}

// Default returns the configuration used when a field is left unset.
func Default() Config {
	return Config{
		Epochs:             10,
		BatchSize:          32,
		Optimizer:          "sgd",
		LR:                 0.01,
		Iterations:         1,
		AveragePredictions: 1,
		Device:             "cpu",
	}
}

// Load reads a YAML config file, applies defaults and validates.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the loops would refuse anyway, before
// any data is touched.
func (c *Config) Validate() error {
	if c.Epochs < 1 {
		return fmt.Errorf("epochs must be >= 1, got %d", c.Epochs)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be >= 1, got %d", c.BatchSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be >= 1, got %d", c.Iterations)
	}
	if c.AveragePredictions < 1 {
		return fmt.Errorf("average_predictions must be >= 1, got %d", c.AveragePredictions)
	}
	if c.LR <= 0 {
		return fmt.Errorf("lr must be > 0, got %g", c.LR)
	}
	switch c.Optimizer {
	case "sgd", "adam":
	default:
		return fmt.Errorf("unknown optimizer %q", c.Optimizer)
	}
	if _, err := c.TensorDevice(); err != nil {
		return err
	}
	return nil
}

// TensorDevice maps the device field to its tensor package value.
func (c *Config) TensorDevice() (tensor.Device, error) {
	switch c.Device {
	case "cpu", "":
		return tensor.CPU, nil
	case "accelerator":
		return tensor.Accelerator, nil
	default:
		return 0, fmt.Errorf("unknown device %q", c.Device)
	}
}
