package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	htm "github.com/htm-community/cla"
	"github.com/htm-community/cla/encoders"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the region params plus the simulation driving it
type Config struct {
	htm.Params `yaml:",inline" mapstructure:",squash"`

	Encoder encoders.ScalarEncoderParams `yaml:"encoder" mapstructure:"encoder"`
	// Values fed to the encoder, repeated until Steps is reached
	Sequence []float64 `yaml:"sequence" mapstructure:"sequence"`
	Steps    int       `yaml:"steps" mapstructure:"steps"`
	LogLevel string    `yaml:"log_level" mapstructure:"log_level"`
}

// DefaultConfig returns the 66x66 sensor / 8x8 region layout learning a
// four element sequence
func DefaultConfig() *Config {
	return &Config{
		Params: *htm.DefaultParams(),
		Encoder: encoders.ScalarEncoderParams{
			W:      5,
			MinVal: 0,
			MaxVal: 3,
			N:      33,
			Name:   "sequence",
		},
		Sequence: []float64{0, 1, 2, 3},
		Steps:    40,
		LogLevel: "info",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if len(c.Sequence) == 0 {
		return fmt.Errorf("%w: sequence must not be empty", htm.ErrInvalidParams)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be > 0", htm.ErrInvalidParams)
	}
	return nil
}

// WriteYAML encodes the configuration as a yaml document
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

// LoadConfig loads configuration from defaults, an optional config file and
// HTMSIM_ prefixed environment variables, in increasing precedence
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Defaults are registered as a config document so that every key is
	// known to AutomaticEnv
	var defaults bytes.Buffer
	if err := DefaultConfig().WriteYAML(&defaults); err != nil {
		return nil, err
	}
	v.SetConfigType("yaml")
	if err := v.ReadConfig(&defaults); err != nil {
		return nil, fmt.Errorf("failed to read defaults: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("HTMSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
