package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values when set.
const (
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvCredentialsFile = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvProject         = "GOOGLE_CLOUD_PROJECT"
	EnvLocation        = "GOOGLE_CLOUD_LOCATION"
	EnvAddr            = "MEDIAFLOW_ADDR"
)

// Load reads a YAML config file, applies environment overrides and fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return finish(&cfg)
}

// Default returns the configuration used when no file is present.
func Default() (*Config, error) {
	return finish(&Config{Summary: SummaryConfig{ExportMarkdown: true}})
}

func finish(cfg *Config) (*Config, error) {
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	override(&cfg.Gemini.APIKey, EnvGeminiAPIKey)
	override(&cfg.Gemini.CredentialsFile, EnvCredentialsFile)
	override(&cfg.Gemini.Project, EnvProject)
	override(&cfg.Gemini.Location, EnvLocation)
	override(&cfg.Server.Addr, EnvAddr)
}

func override(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
