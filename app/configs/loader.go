package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Model           string         `yaml:"model" validate:"required"`
	BaseURL         string         `yaml:"base_url"`
	APIKeyFile      string         `yaml:"api_key_file,omitempty"`
	MaxAttempts     int            `yaml:"max_attempts"`
	MaxTimeSeconds  float64        `yaml:"max_time,omitempty"`
	PromptFile      string         `yaml:"prompt_file" validate:"required"`
	SourceFile      string         `yaml:"source_file" validate:"required"`
	Workspace       string         `yaml:"workspace,omitempty"`
	RunExecutable   bool           `yaml:"run_executable"`
	ExecutableInput string         `yaml:"executable_input,omitempty"`
	PrintCode       bool           `yaml:"print_code"`
	PrintDiagnostic bool           `yaml:"print_compiler_errors"`
	Compiler        string         `yaml:"compiler" validate:"required"`
	CompilerOptions []string       `yaml:"compiler_options,omitempty"`
	Clients         []ClientConfig `yaml:"clients,omitempty"`
}

// ClientConfig defines the configuration for a notifier connector
type ClientConfig struct {
	Type    string            `yaml:"type"`
	Enabled bool              `yaml:"enabled"`
	Config  map[string]string `yaml:"config,omitempty"`
}

var validate = validator.New()

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read configs file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = os.Getenv("LLM_BASE_URL")
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:1234"
	}
	if c.Workspace == "" {
		c.Workspace = "generations"
	}
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configs: %w", err)
	}

	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be a positive integer, got %d", c.MaxAttempts)
	}
	if c.MaxTimeSeconds < 0 {
		return fmt.Errorf("max_time cannot be negative, got %v", c.MaxTimeSeconds)
	}
	if filepath.Ext(c.SourceFile) == "" {
		return fmt.Errorf("source_file %q has no extension", c.SourceFile)
	}
	if strings.ContainsRune(c.SourceFile, os.PathSeparator) {
		return fmt.Errorf("source_file %q must be a bare file name", c.SourceFile)
	}

	for i, clientCfg := range c.Clients {
		if clientCfg.Type == "" {
			return fmt.Errorf("client %d: type cannot be empty", i)
		}
	}

	return nil
}

// MaxTime is the cumulative generation-time ceiling; zero means no ceiling.
func (c *Config) MaxTime() time.Duration {
	return time.Duration(c.MaxTimeSeconds * float64(time.Second))
}

// APIKey reads the backend key file when one is configured. Local backends
// typically need none.
func (c *Config) APIKey() (string, error) {
	if c.APIKeyFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.APIKeyFile)
	if err != nil {
		return "", fmt.Errorf("read API key file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
