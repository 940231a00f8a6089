package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/huimingz/commit-composer/internal/log"
)

const (
	// FileName is the configuration file looked up in the current and home directories
	FileName = ".composer.yaml"

	// DefaultHistoryFile is the history database file name under ~/.composer
	DefaultHistoryFile = "commit_history.db"

	// DefaultGeminiModel is used by the built-in configuration
	DefaultGeminiModel = "gemini-1.5-flash"
)

// Supported providers
var supportedProviders = map[string]bool{
	"openai":   true,
	"deepseek": true,
	"ollama":   true,
	"gemini":   true,
	"grok":     true,
}

// SupportedProviders returns a sorted list of supported providers
func SupportedProviders() []string {
	providers := make([]string, 0, len(supportedProviders))
	for p := range supportedProviders {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

// Config represents the application configuration
type Config struct {
	DefaultModel string                 `yaml:"default_model" mapstructure:"default_model"`
	Models       map[string]ModelConfig `yaml:"models" mapstructure:"models"`
	Language     string                 `yaml:"language" mapstructure:"language"`
	Retry        *RetryConfig           `yaml:"retry" mapstructure:"retry"`
	History      *HistoryConfig         `yaml:"history" mapstructure:"history"`
	Composer     *ComposerConfig        `yaml:"composer" mapstructure:"composer"`
	Server       *ServerConfig          `yaml:"server" mapstructure:"server"`
}

// ModelConfig represents a single model configuration
type ModelConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key" json:"-"`
	Model    string `yaml:"model" mapstructure:"model"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

// RetryConfig represents the retry configuration of backend calls
type RetryConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	MaxAttempts int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffBase float64 `yaml:"backoff_base" mapstructure:"backoff_base"` // in seconds
	BackoffMax  float64 `yaml:"backoff_max" mapstructure:"backoff_max"`   // in seconds
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Enabled:     true,
		MaxAttempts: 2,
		BackoffBase: 1.0,
		BackoffMax:  8.0,
	}
}

// Validate validates the retry configuration
func (r *RetryConfig) Validate() error {
	if r.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be non-negative")
	}
	if r.BackoffBase < 0 {
		return fmt.Errorf("backoff_base must be non-negative")
	}
	if r.BackoffMax < r.BackoffBase {
		return fmt.Errorf("backoff_max must be greater than or equal to backoff_base")
	}
	return nil
}

// HistoryConfig represents the history database configuration
type HistoryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ComposerConfig represents message generation settings
type ComposerConfig struct {
	Timeout int    `yaml:"timeout" mapstructure:"timeout"` // in seconds
	Style   string `yaml:"style" mapstructure:"style"`     // default style for regeneration
}

// DefaultComposerConfig returns the default composer configuration
func DefaultComposerConfig() *ComposerConfig {
	return &ComposerConfig{
		Timeout: 60,
		Style:   "concise",
	}
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Addr           string   `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// DefaultServerConfig returns the default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:           ":8000",
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Validate validates the model configuration
func (m *ModelConfig) Validate() error {
	if m.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !supportedProviders[m.Provider] {
		return fmt.Errorf("unsupported provider: %s (supported: %s)", m.Provider, strings.Join(SupportedProviders(), ", "))
	}
	if m.Model == "" {
		return fmt.Errorf("model is required")
	}
	// API key is required for all providers except ollama
	if m.Provider != "ollama" && m.APIKey == "" {
		return fmt.Errorf("api_key is required for provider %s", m.Provider)
	}
	return nil
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("no models configured")
	}

	if c.DefaultModel != "" {
		if _, ok := c.Models[c.DefaultModel]; !ok {
			return fmt.Errorf("default model '%s' not found in models configuration", c.DefaultModel)
		}
	}

	for name, model := range c.Models {
		if err := model.Validate(); err != nil {
			return fmt.Errorf("invalid model '%s': %w", name, err)
		}
	}

	if c.Retry != nil {
		if err := c.Retry.Validate(); err != nil {
			return fmt.Errorf("invalid retry configuration: %w", err)
		}
	}

	if c.Composer != nil && c.Composer.Timeout < 0 {
		return fmt.Errorf("invalid composer configuration: timeout must be non-negative")
	}

	return nil
}

// GetModel returns the model configuration by name
// Priority: parameter > env variable (COMPOSER_MODEL) > default_model
func (c *Config) GetModel(modelName string) (*ModelConfig, error) {
	if modelName == "" {
		modelName = os.Getenv("COMPOSER_MODEL")
	}

	if modelName == "" {
		modelName = c.DefaultModel
	}

	if modelName == "" {
		return nil, fmt.Errorf("no model specified and no default model configured")
	}

	model, ok := c.Models[modelName]
	if !ok {
		return nil, fmt.Errorf("model '%s' not found in configuration", modelName)
	}

	model.APIKey = expandEnv(model.APIKey)

	return &model, nil
}

// GetLanguage returns the language to use
// Priority: parameter > env variable (COMPOSER_LANG) > config file > default (en)
func (c *Config) GetLanguage(langParam string) string {
	if langParam != "" {
		return langParam
	}

	if envLang := os.Getenv("COMPOSER_LANG"); envLang != "" {
		return envLang
	}

	if c.Language != "" {
		return c.Language
	}

	return "en"
}

// GetRetryConfig returns the retry configuration with defaults applied
func (c *Config) GetRetryConfig() *RetryConfig {
	if c.Retry == nil {
		return DefaultRetryConfig()
	}
	defaults := DefaultRetryConfig()
	if c.Retry.MaxAttempts < 0 {
		c.Retry.MaxAttempts = defaults.MaxAttempts
	}
	if c.Retry.BackoffBase < 0 {
		c.Retry.BackoffBase = defaults.BackoffBase
	}
	if c.Retry.BackoffMax < 0 {
		c.Retry.BackoffMax = defaults.BackoffMax
	}
	return c.Retry
}

// GetComposerConfig returns the composer configuration with defaults applied
func (c *Config) GetComposerConfig() *ComposerConfig {
	if c.Composer == nil {
		return DefaultComposerConfig()
	}
	defaults := DefaultComposerConfig()
	if c.Composer.Timeout <= 0 {
		c.Composer.Timeout = defaults.Timeout
	}
	if c.Composer.Style == "" {
		c.Composer.Style = defaults.Style
	}
	return c.Composer
}

// GetServerConfig returns the server configuration with defaults applied
func (c *Config) GetServerConfig() *ServerConfig {
	if c.Server == nil {
		return DefaultServerConfig()
	}
	defaults := DefaultServerConfig()
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Addr
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = defaults.AllowedOrigins
	}
	return c.Server
}

// GetHistoryPath returns the history database path.
// Priority: config file > ~/.composer/commit_history.db
func (c *Config) GetHistoryPath() (string, error) {
	if c.History != nil && c.History.Path != "" {
		return expandHome(c.History.Path)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".composer", DefaultHistoryFile), nil
}

// Default returns the built-in configuration: a single Gemini model whose
// key is read from GEMINI_API_KEY.
func Default() *Config {
	return &Config{
		DefaultModel: "gemini",
		Models: map[string]ModelConfig{
			"gemini": {
				Provider: "gemini",
				APIKey:   "${GEMINI_API_KEY}",
				Model:    DefaultGeminiModel,
			},
		},
		Language: "en",
	}
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, path[2:]), nil
}

// expandEnv expands environment variables in the format ${VAR} or $VAR
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// LoadDotEnv loads variables from .env files without overriding the
// environment. Missing files are ignored; a file that fails to parse is
// skipped with a warning.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Warn("failed to load %s: %v", p, err)
		}
	}
}

// LoadFromFile loads configuration from a file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Load loads configuration with the following priority:
// 1. Custom path if provided
// 2. Current directory .composer.yaml
// 3. Home directory ~/.composer.yaml
// 4. Built-in Gemini configuration when GEMINI_API_KEY is set
func Load(customPath string) (*Config, error) {
	if customPath != "" {
		return LoadFromFile(customPath)
	}

	if cfg, err := LoadFromFile(FileName); err == nil {
		return cfg, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	if cfg, err := LoadFromFile(filepath.Join(homeDir, FileName)); err == nil {
		return cfg, nil
	}

	if os.Getenv("GEMINI_API_KEY") != "" {
		return Default(), nil
	}

	return nil, fmt.Errorf("no configuration file found. Run 'composer init' to create one or set GEMINI_API_KEY")
}
