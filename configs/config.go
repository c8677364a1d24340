package configs

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/prosodylab/prosolia/pkg/dct"
	"github.com/prosodylab/prosolia/pkg/gammatone"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose" yaml:"verbose"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`

	// Gammatone filterbank energy parameters
	Filterbank gammatone.Spec `mapstructure:"filterbank" yaml:"filterbank"`

	// DCT compression parameters
	DCT dct.Spec `mapstructure:"dct" yaml:"dct"`

	// External pitch extractor parameters
	Pitch PitchConfig `mapstructure:"pitch" yaml:"pitch"`
}

// PitchConfig contains the external pitch extractor settings
type PitchConfig struct {
	// KaldiRoot is the Kaldi installation root; the extractor must live
	// at src/featbin/compute-kaldi-pitch-feats below it.
	KaldiRoot string `mapstructure:"kaldi_root" yaml:"kaldi_root"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// Validate checks every sample-rate-independent parameter combination.
// Rate-dependent checks (low_frequency against Nyquist) run once the input
// file is known.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case "json", "yaml", "csv", "":
	default:
		return fmt.Errorf("output_format %q is not one of json, yaml, csv", c.OutputFormat)
	}

	if c.Filterbank.NumChannels < 1 {
		return fmt.Errorf("filterbank.nb_channels must be >= 1, got %d", c.Filterbank.NumChannels)
	}
	if c.Filterbank.LowCF <= 0 {
		return fmt.Errorf("filterbank.low_frequency must be positive, got %g", c.Filterbank.LowCF)
	}
	if c.Filterbank.WindowTime <= 0 {
		return fmt.Errorf("filterbank.window_time must be positive, got %g", c.Filterbank.WindowTime)
	}
	if c.Filterbank.HopTime <= 0 || c.Filterbank.HopTime > c.Filterbank.WindowTime {
		return fmt.Errorf("filterbank.overlap_time must be in (0, window_time], got %g", c.Filterbank.HopTime)
	}

	switch c.Filterbank.Compression {
	case gammatone.CompressionNone, gammatone.CompressionLog, gammatone.CompressionCubic, "":
	default:
		return fmt.Errorf("filterbank.compression %q is not one of none, log, cubic", c.Filterbank.Compression)
	}

	if c.DCT.Size < 1 {
		return fmt.Errorf("dct.size must be >= 1, got %d", c.DCT.Size)
	}
	if c.DCT.Size > c.Filterbank.NumChannels {
		return fmt.Errorf("dct.size %d exceeds filterbank.nb_channels %d", c.DCT.Size, c.Filterbank.NumChannels)
	}

	if c.Pitch.KaldiRoot == "" {
		return fmt.Errorf("pitch.kaldi_root is required")
	}

	return nil
}
