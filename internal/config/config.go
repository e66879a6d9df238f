// Package config loads the agentscope configuration file and applies
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/agentscope/core/internal/parser"
	"github.com/agentscope/core/internal/validation"
)

// Config holds all agentscope configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr              string `yaml:"addr" validate:"required"`
	CORSAllowedOrigin string `yaml:"cors_allowed_origin" validate:"required"`
	// EnvironmentURL is reported on agent models when a request omits it.
	EnvironmentURL string `yaml:"environment_url" validate:"omitempty,url"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// AnalysisConfig tunes the classifier and the graph builder.
type AnalysisConfig struct {
	EdgeDedup string          `yaml:"edge_dedup" validate:"omitempty,oneof=reference triple none"`
	TypeCodes TypeCodesConfig `yaml:"type_codes"`
}

// TypeCodesConfig lists the environment-specific component type codes.
// Zero disables the topic or action code rule.
type TypeCodesConfig struct {
	Topic   int   `yaml:"topic" validate:"min=0"`
	Action  int   `yaml:"action" validate:"min=0"`
	Channel []int `yaml:"channel" validate:"dive,min=1"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	codes := parser.DefaultTypeCodes()
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			CORSAllowedOrigin: "*",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Analysis: AnalysisConfig{
			EdgeDedup: string(parser.DedupByReference),
			TypeCodes: TypeCodesConfig{
				Topic:   codes.Topic,
				Action:  codes.Action,
				Channel: codes.Channel,
			},
		},
	}
}

// Load reads configuration from a YAML file. An empty path or a missing file
// yields the defaults. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("AGENTSCOPE_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if origin := os.Getenv("CORS_ALLOWED_ORIGIN"); origin != "" {
		c.Server.CORSAllowedOrigin = origin
	}
	if url := os.Getenv("AGENTSCOPE_ENVIRONMENT_URL"); url != "" {
		c.Server.EnvironmentURL = url
	}
	if level := os.Getenv("AGENTSCOPE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

// AnalyzerOptions converts the analysis section into parser options.
func (c *Config) AnalyzerOptions() ([]parser.Option, error) {
	dedup, err := parser.ParseEdgeDedup(c.Analysis.EdgeDedup)
	if err != nil {
		return nil, err
	}
	codes := parser.TypeCodes{
		Topic:   c.Analysis.TypeCodes.Topic,
		Action:  c.Analysis.TypeCodes.Action,
		Channel: c.Analysis.TypeCodes.Channel,
	}
	return []parser.Option{
		parser.WithTypeCodes(codes),
		parser.WithEdgeDedup(dedup),
	}, nil
}
