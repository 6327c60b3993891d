package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Log   LogConfig   `mapstructure:"log"   yaml:"log"`
	Store StoreConfig `mapstructure:"store" yaml:"store"`
}

// LoadConfig reads the configuration from viper on top of the defaults and
// validates the result.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration, check your config file for valid parameters: %w", err)
	}
	return nil
}
