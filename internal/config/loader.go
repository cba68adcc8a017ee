// Package config provides configuration management for the racehorse ledger.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is used when no --config flag is given
	DefaultConfigPath = "config/config.yaml"
	envPrefix         = "RACEHORSE"
)

// Load reads the configuration file, which must exist, over the defaults.
// Environment variables override both and ${VAR_NAME} placeholders in the
// YAML are expanded.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return parse(data)
}

// LoadWithDefaults is Load for an optional file.
// A missing config file is not an error; defaults and environment apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return parse(data)
}

func parse(data []byte) (*Config, error) {
	v := newViper()
	setDefaults(v)

	if len(data) > 0 {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. Variables already set are left alone and a missing file is ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "racehorse-ledger")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("paths.root", ".")
	v.SetDefault("paths.racecards_dir", "data/raw/racecards")
	v.SetDefault("paths.template_file", "example_candidates.json")
	v.SetDefault("paths.predictions_dir", "data/predictions")
	v.SetDefault("paths.results_dir", "data/results")
	v.SetDefault("paths.ledger_file", "data/metrics/summary.csv")

	v.SetDefault("model.base_url", "https://api.openai.com/v1")
	v.SetDefault("model.model_name", "gpt-4o-mini")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.prompt_file", "prompts/value_bet.txt")
	v.SetDefault("model.temperature", 0.2)
	v.SetDefault("model.max_tokens", 600)
	v.SetDefault("model.request_timeout_seconds", 60)
	v.SetDefault("model.requests_per_second", 1.0)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.textfile", "data/metrics/racehorse.prom")

	v.SetDefault("secrets.aws_enabled", false)
	v.SetDefault("secrets.region", "")
	v.SetDefault("secrets.secret_name", "")
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}
