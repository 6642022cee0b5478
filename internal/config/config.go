package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	// configDir is the configuration directory path
	// Can be set via SetConfigDir before loading config
	configDir     string
	configDirInit bool
)

// SetConfigDir sets a custom configuration directory
// Must be called before any config loading functions
func SetConfigDir(dir string) {
	configDir = dir
	configDirInit = true
}

// GetConfigDir returns the configuration directory
// Priority: 1. Manually set via SetConfigDir, 2. ~/.finchat
func GetConfigDir() string {
	if !configDirInit {
		home, err := os.UserHomeDir()
		if err == nil {
			configDir = filepath.Join(home, ".finchat")
		}
		configDirInit = true
	}
	return configDir
}

// Config application configuration structure
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Providers ProvidersConfig `yaml:"providers"`
	Log       LogConfig       `yaml:"log"`
}

// ModelConfig Anthropic model configuration
type ModelConfig struct {
	APIKey            string `yaml:"api_key"`
	Model             string `yaml:"model"`
	MaxTokens         int    `yaml:"max_tokens"`
	MaxToolIterations int    `yaml:"max_tool_iterations"`
	SystemPrompt      string `yaml:"system_prompt"`
}

// ProvidersConfig upstream data provider configuration
type ProvidersConfig struct {
	AlphaVantageAPIKey  string `yaml:"alpha_vantage_api_key"`
	FREDAPIKey          string `yaml:"fred_api_key"`
	GeocodingBaseURL    string `yaml:"geocoding_base_url"`
	WeatherBaseURL      string `yaml:"weather_base_url"`
	AlphaVantageBaseURL string `yaml:"alpha_vantage_base_url"`
	FREDBaseURL         string `yaml:"fred_base_url"`
	TimeoutSeconds      int    `yaml:"timeout_seconds"`
	UserAgent           string `yaml:"user_agent"`
}

// LogConfig logging configuration
type LogConfig struct {
	Dir     string `yaml:"dir"`
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// DefaultSystemPrompt is used when model.system_prompt is not set.
const DefaultSystemPrompt = "You are FinChat, a financial data assistant. " +
	"You have tools for stock quotes, daily series, SMA/RSI indicators, FX and crypto rates, " +
	"FRED economic data, and city weather. Use them whenever the user asks for live data, " +
	"and answer concisely in plain language."

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			APIKey:            "",
			Model:             "claude-haiku-4-5",
			MaxTokens:         4096,
			MaxToolIterations: 10,
			SystemPrompt:      "",
		},
		Providers: ProvidersConfig{
			GeocodingBaseURL:    "https://geocoding-api.open-meteo.com",
			WeatherBaseURL:      "https://api.open-meteo.com",
			AlphaVantageBaseURL: "https://www.alphavantage.co",
			FREDBaseURL:         "https://api.stlouisfed.org",
			TimeoutSeconds:      30,
			UserAgent:           "FinChat/0.1",
		},
		Log: LogConfig{
			Dir:     filepath.Join(GetConfigDir(), "logs"),
			Level:   "INFO",
			Console: false,
		},
	}
}

// ConfigDir returns the configuration directory path
func ConfigDir() (string, error) {
	dir := GetConfigDir()
	if dir == "" {
		return "", fmt.Errorf("failed to determine config directory")
	}
	return dir, nil
}

// ConfigPath returns the configuration file path
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from file and merges with secrets
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Config file doesn't exist, create default config
		cfg := DefaultConfig()
		mergeSecrets(cfg)

		if err := Save(cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse config
	cfg := DefaultConfig() // Use default values as base
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeSecrets(cfg)

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeSecrets fills empty credentials from the .secrets file and environment
func mergeSecrets(cfg *Config) {
	secrets, _ := LoadSecrets()
	if cfg.Model.APIKey == "" {
		cfg.Model.APIKey = secrets.GetAnthropicAPIKey()
	}
	if cfg.Providers.AlphaVantageAPIKey == "" {
		cfg.Providers.AlphaVantageAPIKey = secrets.GetAlphaVantageAPIKey()
	}
	if cfg.Providers.FREDAPIKey == "" {
		cfg.Providers.FREDAPIKey = secrets.GetFREDAPIKey()
	}
}

// Save saves configuration to file
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	// Ensure config directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Serialize config
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	content := "# FinChat Configuration File\n\n" + string(data)

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Model.Model == "" {
		return fmt.Errorf("config error: model.model cannot be empty")
	}
	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("config error: model.max_tokens must be greater than 0")
	}
	if c.Model.MaxToolIterations <= 0 {
		return fmt.Errorf("config error: model.max_tool_iterations must be greater than 0")
	}
	if c.Providers.GeocodingBaseURL == "" {
		return fmt.Errorf("config error: providers.geocoding_base_url cannot be empty")
	}
	if c.Providers.WeatherBaseURL == "" {
		return fmt.Errorf("config error: providers.weather_base_url cannot be empty")
	}
	if c.Providers.AlphaVantageBaseURL == "" {
		return fmt.Errorf("config error: providers.alpha_vantage_base_url cannot be empty")
	}
	if c.Providers.FREDBaseURL == "" {
		return fmt.Errorf("config error: providers.fred_base_url cannot be empty")
	}
	if c.Providers.TimeoutSeconds <= 0 {
		return fmt.Errorf("config error: providers.timeout_seconds must be greater than 0")
	}
	return nil
}

// SystemPrompt returns the configured system prompt or the default
func (c *Config) SystemPrompt() string {
	if c.Model.SystemPrompt != "" {
		return c.Model.SystemPrompt
	}
	return DefaultSystemPrompt
}

// IsAPIKeyConfigured checks if the Anthropic API key is configured
func (c *Config) IsAPIKeyConfigured() bool {
	return c.Model.APIKey != ""
}

// String returns string representation of config (hides sensitive info)
func (c *Config) String() string {
	return fmt.Sprintf(`FinChat Configuration:
  Model:
    API Key: %s
    Model: %s
    Max Tokens: %d
    Max Tool Iterations: %d
  Providers:
    Alpha Vantage API Key: %s
    FRED API Key: %s
    Geocoding Base URL: %s
    Weather Base URL: %s
    Alpha Vantage Base URL: %s
    FRED Base URL: %s
    Timeout Seconds: %d
    User Agent: %s
  Log:
    Dir: %s
    Level: %s
    Console: %v`,
		redactAPIKey(c.Model.APIKey),
		c.Model.Model,
		c.Model.MaxTokens,
		c.Model.MaxToolIterations,
		redactAPIKey(c.Providers.AlphaVantageAPIKey),
		redactAPIKey(c.Providers.FREDAPIKey),
		c.Providers.GeocodingBaseURL,
		c.Providers.WeatherBaseURL,
		c.Providers.AlphaVantageBaseURL,
		c.Providers.FREDBaseURL,
		c.Providers.TimeoutSeconds,
		c.Providers.UserAgent,
		c.Log.Dir,
		c.Log.Level,
		c.Log.Console,
	)
}

func redactAPIKey(value string) string {
	if value == "" {
		return "(not configured)"
	}
	if len(value) > 8 {
		return value[:8] + "..."
	}
	return "***"
}
