package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type RunnerConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	MaxImageDim     int           `mapstructure:"max_image_dim"`
	PrepopulatePath string        `mapstructure:"prepopulate_path"`
	LanguagesFile   string        `mapstructure:"languages_file"`
}

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Runner RunnerConfig `mapstructure:"runner"`
}

// Load reads runroom.yaml from the working directory or ~/.runroom.
// A missing config file is fine; defaults carry the whole setup.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("runroom")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.runroom")

	v.SetDefault("server.port", 5000)
	v.SetDefault("runner.poll_interval", "100ms")
	v.SetDefault("runner.max_image_dim", 800)
	v.SetDefault("runner.prepopulate_path", "prepopulate.sql")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}
