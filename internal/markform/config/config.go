package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jlevy/markform/internal/markform/errno"
)

var structValidator = validator.New()

// Config is the running configuration wrapper, mirroring
// internal/hivemind/config.Config{*options.Options}.
type Config struct {
	*HarnessOptions
}

// CreateConfigFromOptions wraps an already-built Options, matching
// internal/hivemind/config.CreateConfigFromOptions.
func CreateConfigFromOptions(opts *HarnessOptions) (*Config, error) {
	if err := opts.Complete(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, &errno.ConfigError{Option: "harness", ExpectedType: "valid HarnessOptions", ReceivedValue: opts}
	}
	return &Config{opts}, nil
}

// LoadFromFile reads a YAML/JSON harness config file via viper and merges
// it over the Glossary defaults (SPEC_FULL.md §A "loaded optionally via
// viper from a YAML/JSON file or environment").
func LoadFromFile(path string) (*Config, error) {
	opts := NewHarnessOptions()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, &errno.ConfigError{Option: "config-file", ExpectedType: "readable YAML/JSON file", ReceivedValue: path}
	}
	if err := v.Unmarshal(opts); err != nil {
		return nil, &errno.ConfigError{Option: "config-file", ExpectedType: "HarnessOptions shape", ReceivedValue: path}
	}
	return CreateConfigFromOptions(opts)
}
