// Package config loads and validates the pipeline configuration. Settings
// come from an optional YAML file layered with environment variables; every
// field has a default that keeps the pipeline runnable offline (mock email
// relay, fallback embeddings, in-memory stores).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the root configuration for a pipeline run.
type Config struct {
	Model ModelConfig `yaml:"model"`
	Data  DataConfig  `yaml:"data"`
	Email EmailConfig `yaml:"email"`
	Log   LogConfig   `yaml:"log"`
}

// ModelConfig selects the generative-language provider and its settings.
type ModelConfig struct {
	// Provider is one of gemini, openai, anthropic or mock.
	Provider string `yaml:"provider"`

	// MaxCalls caps generative calls per run. Zero means unlimited.
	MaxCalls int `yaml:"max_calls"`

	Gemini    GeminiConfig    `yaml:"gemini"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
}

// GeminiConfig configures the Gemini adapter, which also supplies embeddings.
type GeminiConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
}

// OpenAIConfig configures the OpenAI adapter.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// AnthropicConfig configures the Anthropic adapter.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// DataConfig points at the data sources and output locations.
type DataConfig struct {
	// CapaFile is the path to the tab-separated CAPA record file.
	CapaFile string `yaml:"capa_file"`

	// ArtifactDir persists run artifacts on disk when set; empty keeps them
	// in memory.
	ArtifactDir string `yaml:"artifact_dir"`
}

// EmailConfig configures report delivery.
type EmailConfig struct {
	// MockMode records emails instead of sending them. Default true.
	MockMode bool `yaml:"mock_mode"`

	// MockLogPath appends delivered mock messages to a log file when set.
	MockLogPath string `yaml:"mock_log_path"`

	Recipient string `yaml:"recipient"`
	Sender    string `yaml:"sender"`

	SMTP SMTPConfig `yaml:"smtp"`
}

// SMTPConfig holds the SMTP relay settings used when mock mode is off.
type SMTPConfig struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	UseTLS   bool   `yaml:"use_tls"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`
}

// Default returns the baseline configuration used before file and environment
// layering.
func Default() Config {
	return Config{
		Model: ModelConfig{
			Provider: "gemini",
			MaxCalls: 100,
			Gemini: GeminiConfig{
				Model:          "gemini-1.5-flash",
				EmbeddingModel: "gemini-embedding-001",
			},
			OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
			Anthropic: AnthropicConfig{Model: "claude-3-5-sonnet-20241022"},
		},
		Data: DataConfig{
			CapaFile: "data/capa_data.txt",
		},
		Email: EmailConfig{
			MockMode:  true,
			Recipient: "analyst@company.com",
			Sender:    "system@company.com",
			SMTP: SMTPConfig{
				Server: "smtp.gmail.com",
				Port:   587,
				UseTLS: true,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variable overrides, in that order. An empty path skips the
// file layer.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		k := koanf.New(".")

		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config from %q: %w", path, err)
		}

		if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
			return Config{}, fmt.Errorf("failed to parse config from %q: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyEnv layers well-known environment variables over the configuration.
// The variable names mirror the deployment conventions of the analysis
// system (SMTP_*, *_API_KEY, EMAIL_MOCK_MODE).
func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setBool := func(dst *bool, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = strings.EqualFold(v, "true")
		}
	}

	setString(&cfg.Model.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Model.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.Model.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.Model.Provider, "MODEL_PROVIDER")

	setString(&cfg.Data.CapaFile, "CAPA_FILE_PATH")

	setString(&cfg.Email.SMTP.Server, "SMTP_SERVER")
	setString(&cfg.Email.SMTP.Username, "SMTP_USERNAME")
	setString(&cfg.Email.SMTP.Password, "SMTP_PASSWORD")
	setBool(&cfg.Email.SMTP.UseTLS, "SMTP_USE_TLS")

	if v, ok := os.LookupEnv("SMTP_PORT"); ok && v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Email.SMTP.Port = port
		}
	}

	setBool(&cfg.Email.MockMode, "EMAIL_MOCK_MODE")
	setString(&cfg.Email.Recipient, "DEFAULT_EMAIL_RECIPIENT")
	setString(&cfg.Email.Sender, "SENDER_EMAIL")

	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
}

// Validate reports configuration errors. Warnings (mock modes, missing API
// keys that have a fallback) are returned separately by Warnings.
func (c Config) Validate() error {
	switch c.Model.Provider {
	case "gemini", "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unknown model provider %q (expected gemini, openai, anthropic or mock)", c.Model.Provider)
	}

	if c.Model.Provider == "openai" && c.Model.OpenAI.APIKey == "" {
		return fmt.Errorf("model provider openai requires OPENAI_API_KEY or model.openai.api_key")
	}

	if c.Model.Provider == "anthropic" && c.Model.Anthropic.APIKey == "" {
		return fmt.Errorf("model provider anthropic requires ANTHROPIC_API_KEY or model.anthropic.api_key")
	}

	if c.Model.MaxCalls < 0 {
		return fmt.Errorf("model.max_calls must not be negative")
	}

	if !c.Email.MockMode {
		if c.Email.SMTP.Server == "" {
			return fmt.Errorf("email mock mode is off but no SMTP server is configured")
		}

		if c.Email.SMTP.Username == "" || c.Email.SMTP.Password == "" {
			return fmt.Errorf("email mock mode is off but SMTP credentials are incomplete")
		}
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q (expected json or text)", c.Log.Format)
	}

	return nil
}

// Warnings lists non-fatal configuration conditions worth surfacing, such as
// fallback behavior that silently degrades output quality.
func (c Config) Warnings() []string {
	var warnings []string

	if c.Model.Provider == "gemini" && c.Model.Gemini.APIKey == "" {
		warnings = append(warnings, "no Gemini API key configured; decomposition and summaries use canned fallbacks")
	}

	if c.Model.Gemini.APIKey == "" {
		warnings = append(warnings, "no Gemini API key configured; vector search uses deterministic fallback embeddings")
	}

	if c.Model.Provider == "mock" {
		warnings = append(warnings, "model provider is mock; outputs are canned responses")
	}

	if c.Email.MockMode {
		warnings = append(warnings, "email mock mode is on; reports are recorded, not sent")
	}

	return warnings
}
