package train

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/gofit/pkg/errors"
)

// Default values applied by Config.Validate for zero-valued fields.
const (
	DefaultLogEvery      = 50
	DefaultValidateEvery = 1
)

// Config carries the experiment hyperparameters consumed by the Trainer.
//
// A Config is a plain value; load one from YAML with LoadConfig or build it
// in code. Validate is called by NewTrainer and fills in defaults.
type Config struct {
	// Epochs is the number of epochs to run. Required, must be >= 1.
	Epochs int `yaml:"epochs"`

	// LogEvery controls per-batch progress logging in the training pass:
	// every LogEvery batches the current and average loss are logged.
	// Defaults to 50.
	LogEvery int `yaml:"log_every"`

	// ValidateEvery runs the evaluate stage every N epochs. Defaults to 1
	// (every epoch). Epochs that skip evaluation pass empty stats to the
	// checkpoint and terminate hooks.
	ValidateEvery int `yaml:"validate_every"`

	// Seed seeds shuffling and weight initialization helpers. Zero means
	// non-deterministic behavior is acceptable.
	Seed int64 `yaml:"seed"`

	// OutDir is the directory handed to checkpoint callbacks that write
	// files. Optional.
	OutDir string `yaml:"out_dir"`
}

// LoadConfig reads a Config from a YAML file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration and fills in defaults for
// zero-valued optional fields. It mutates the receiver.
func (c *Config) Validate() error {
	if c.Epochs < 1 {
		return errors.NewValidationError("epochs", "must be at least 1", c.Epochs)
	}
	if c.LogEvery < 0 {
		return errors.NewValidationError("log_every", "must not be negative", c.LogEvery)
	}
	if c.ValidateEvery < 0 {
		return errors.NewValidationError("validate_every", "must not be negative", c.ValidateEvery)
	}
	if c.LogEvery == 0 {
		c.LogEvery = DefaultLogEvery
	}
	if c.ValidateEvery == 0 {
		c.ValidateEvery = DefaultValidateEvery
	}
	return nil
}
