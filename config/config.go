package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvRatesAPIKey overrides rates.api_key so the key can stay out of
// checked-in config files.
const EnvRatesAPIKey = "PIPDECK_RATES_API_KEY"

// Config represents the complete backend configuration
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server"`
	Rates      RatesConfig      `json:"rates" yaml:"rates"`
	Calendar   CalendarConfig   `json:"calendar" yaml:"calendar"`
	Newsletter NewsletterConfig `json:"newsletter" yaml:"newsletter"`
}

// ServerConfig contains HTTP listener parameters
type ServerConfig struct {
	Host           string `json:"host" yaml:"host"`
	Port           int    `json:"port" yaml:"port"`
	ReadTimeout    string `json:"read_timeout,omitempty" yaml:"read_timeout,omitempty"`
	WriteTimeout   string `json:"write_timeout,omitempty" yaml:"write_timeout,omitempty"`
	RequestTimeout string `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty"`
	AllowedOrigin  string `json:"allowed_origin,omitempty" yaml:"allowed_origin,omitempty"`
}

// RatesConfig points at the hosted rate-source endpoint
type RatesConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// CalendarConfig contains the hosted-table path and the scraper invocation
type CalendarConfig struct {
	DBPath         string   `json:"db_path" yaml:"db_path"`
	ScraperCommand []string `json:"scraper_command,omitempty" yaml:"scraper_command,omitempty"`
}

// NewsletterConfig points at the email-marketing provider's form endpoint
type NewsletterConfig struct {
	FormURL       string `json:"form_url" yaml:"form_url"`
	HoneypotField string `json:"honeypot_field,omitempty" yaml:"honeypot_field,omitempty"`
	Timeout       string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// ParseDuration converts a duration string to time.Duration, with a
// fallback for the empty string.
func ParseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}

// LoadFromFile loads configuration from a file (JSON or YAML based on
// content), applies env overrides, and validates.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if key := os.Getenv(EnvRatesAPIKey); key != "" {
		cfg.Rates.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if (len(path) > 5 && path[len(path)-5:] == ".yaml") || (len(path) > 4 && path[len(path)-4:] == ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	for _, d := range []struct{ name, value string }{
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.request_timeout", c.Server.RequestTimeout},
		{"rates.timeout", c.Rates.Timeout},
		{"newsletter.timeout", c.Newsletter.Timeout},
	} {
		if _, err := ParseDuration(d.value, 0); err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
	}
	if c.Rates.BaseURL == "" {
		return fmt.Errorf("rates.base_url is required")
	}
	if c.Calendar.DBPath == "" {
		return fmt.Errorf("calendar.db_path is required")
	}
	if c.Newsletter.FormURL == "" {
		return fmt.Errorf("newsletter.form_url is required")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			ReadTimeout:    "10s",
			WriteTimeout:   "10s",
			RequestTimeout: "15s",
			AllowedOrigin:  "https://pipdeck.com",
		},
		Rates: RatesConfig{
			BaseURL: "https://rates.pipdeck.com/v1",
			Timeout: "10s",
		},
		Calendar: CalendarConfig{
			DBPath:         "./calendar.db",
			ScraperCommand: []string{"python3", "scraper/cli.py"},
		},
		Newsletter: NewsletterConfig{
			FormURL:       "https://forms.example-esp.com/pipdeck/subscribe",
			HoneypotField: "company",
			Timeout:       "10s",
		},
	}
}
