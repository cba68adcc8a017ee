// Package config provides configuration management for the racehorse ledger.
package config

import (
	"os"
	"path/filepath"
)

// Config represents the complete application configuration
type Config struct {
	App     AppConfig     `mapstructure:"app" validate:"required"`
	Paths   PathsConfig   `mapstructure:"paths" validate:"required"`
	Model   ModelConfig   `mapstructure:"model" validate:"required"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Secrets SecretsConfig `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// PathsConfig locates every file the tool reads or writes.
// Relative paths are resolved against Root.
type PathsConfig struct {
	Root           string `mapstructure:"root" validate:"required"`
	RacecardsDir   string `mapstructure:"racecards_dir" validate:"required"`
	TemplateFile   string `mapstructure:"template_file" validate:"required"`
	PredictionsDir string `mapstructure:"predictions_dir" validate:"required"`
	ResultsDir     string `mapstructure:"results_dir" validate:"required"`
	LedgerFile     string `mapstructure:"ledger_file" validate:"required"`
}

// ModelConfig represents the chat completion service used to pick a selection
type ModelConfig struct {
	BaseURL               string  `mapstructure:"base_url" validate:"required,url"`
	ModelName             string  `mapstructure:"model_name" validate:"required"`
	APIKey                string  `mapstructure:"api_key"`
	PromptFile            string  `mapstructure:"prompt_file" validate:"required"`
	Temperature           float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens             int     `mapstructure:"max_tokens" validate:"required,gt=0"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	RequestsPerSecond     float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
}

// MetricsConfig represents the Prometheus textfile output
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Textfile string `mapstructure:"textfile" validate:"required_if=Enabled true"`
}

// SecretsConfig controls the optional AWS Secrets Manager overlay
type SecretsConfig struct {
	AWSEnabled bool   `mapstructure:"aws_enabled"`
	Region     string `mapstructure:"region" validate:"required_if=AWSEnabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=AWSEnabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Resolve returns p joined to the project root unless p is already absolute
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.Root, p)
}

// LedgerPath returns the absolute location of the ledger store
func (c *Config) LedgerPath() string {
	return c.Resolve(c.Paths.LedgerFile)
}

// RacecardsDir returns the directory holding dated candidate files
func (c *Config) RacecardsDir() string {
	return c.Resolve(c.Paths.RacecardsDir)
}

// TemplatePath returns the example candidates file copied each day
func (c *Config) TemplatePath() string {
	return filepath.Join(c.RacecardsDir(), c.Paths.TemplateFile)
}

// PredictionsDir returns the directory holding saved predictions
func (c *Config) PredictionsDir() string {
	return c.Resolve(c.Paths.PredictionsDir)
}

// ResultsDir returns the directory holding settlement records
func (c *Config) ResultsDir() string {
	return c.Resolve(c.Paths.ResultsDir)
}

// PromptPath returns the prompt template sent to the model
func (c *Config) PromptPath() string {
	return c.Resolve(c.Model.PromptFile)
}

// GetAPIKey returns the model API key, falling back to OPENAI_API_KEY
func (c *Config) GetAPIKey() string {
	if c.Model.APIKey != "" {
		return c.Model.APIKey
	}
	return os.Getenv("OPENAI_API_KEY")
}
