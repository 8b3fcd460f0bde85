package logger

import (
	"cmp"
	"fmt"
	"slices"
)

var (
	levels  = []string{"trace", "debug", "info", "warn", "error", "disabled"}
	formats = []string{"json", "console", FormatPretty}
	outputs = []string{"stdout", "stderr", "discard"}
)

// Config is the logging section of the buildprobe configuration.
type Config struct {
	// Level is a zerolog level name; "disabled" silences fixture processing.
	Level string `yaml:"level" mapstructure:"level"`
	// Format is "console" (default), "pretty" or "json".
	Format string `yaml:"format" mapstructure:"format"`
	// Output is "stdout", "stderr" or "discard".
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults fills empty fields. Timestamps are always on.
func (c *Config) ApplyDefaults() {
	c.Level = cmp.Or(c.Level, "info")
	c.Format = cmp.Or(c.Format, "console")
	c.Output = cmp.Or(c.Output, "stdout")
	c.Timestamp = true
}

// Validate checks each field against its accepted values.
func (c *Config) Validate() error {
	checks := []struct {
		key     string
		value   string
		allowed []string
	}{
		{"logging.level", c.Level, levels},
		{"logging.format", c.Format, formats},
		{"logging.output", c.Output, outputs},
	}
	for _, ck := range checks {
		if !slices.Contains(ck.allowed, ck.value) {
			return fmt.Errorf("%s must be one of %v (got: %s)", ck.key, ck.allowed, ck.value)
		}
	}
	return nil
}
