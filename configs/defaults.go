package configs

import "github.com/spf13/viper"

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Application defaults
	if !v.IsSet("log_level") {
		v.Set("log_level", "info")
	}
	if !v.IsSet("output_format") {
		v.Set("output_format", "json")
	}

	// Filterbank defaults, matching the usual prosody analysis setup:
	// 20 ERB channels from 20 Hz, half-second integration windows
	// advancing by 100 ms
	if !v.IsSet("filterbank.nb_channels") {
		v.Set("filterbank.nb_channels", 20)
	}
	if !v.IsSet("filterbank.low_frequency") {
		v.Set("filterbank.low_frequency", 20.0)
	}
	if !v.IsSet("filterbank.window_time") {
		v.Set("filterbank.window_time", 0.5)
	}
	if !v.IsSet("filterbank.overlap_time") {
		v.Set("filterbank.overlap_time", 0.1)
	}
	if !v.IsSet("filterbank.compression") {
		v.Set("filterbank.compression", "none")
	}

	// DCT defaults
	if !v.IsSet("dct.normalize") {
		v.Set("dct.normalize", "")
	}
	if !v.IsSet("dct.size") {
		v.Set("dct.size", 8)
	}
}
