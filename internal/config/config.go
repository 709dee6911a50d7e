package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/kyleking/filter-flow/internal/errors"
)

const (
	// EnvPrefix prefixes every environment variable the application reads
	EnvPrefix = "FILTER_FLOW_"

	appName = "filter-flow"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `json:"server"`
	Store   StoreConfig   `json:"store"`
	Logging LoggingConfig `json:"logging"`
	Debug   DebugConfig   `json:"debug"`
}

// ServerConfig represents the HTTP surface configuration
type ServerConfig struct {
	Addr            string `json:"addr"             env:"ADDR"`
	BaseURL         string `json:"base_url"         env:"BASE_URL"` // URL prefix for every route
	ReadTimeout     string `json:"read_timeout"     env:"READ_TIMEOUT"`
	ShutdownTimeout string `json:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// StoreConfig selects where table and row lookups are answered from
type StoreConfig struct {
	Backend string `json:"backend" env:"STORE_BACKEND"` // memory, duckdb, sqlite
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level     string `json:"level"      env:"LOG_LEVEL"`      // debug, info, warn, error
	Format    string `json:"format"     env:"LOG_FORMAT"`     // text, json
	Output    string `json:"output"     env:"LOG_OUTPUT"`     // stdout, stderr, file
	File      string `json:"file"       env:"LOG_FILE"`       // log file path when output is file
	AddSource bool   `json:"add_source" env:"LOG_ADD_SOURCE"` // add source file and line info to logs
}

// DebugConfig represents debug configuration
type DebugConfig struct {
	Enabled bool `json:"enabled" env:"DEBUG"`
	Verbose bool `json:"verbose" env:"VERBOSE"`
}

// Backends lists the supported store backends
var Backends = []string{"memory", "duckdb", "sqlite"}

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:5173",
			BaseURL:         "/",
			ReadTimeout:     "10s",
			ShutdownTimeout: "5s",
		},
		Store: StoreConfig{
			Backend: "memory",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
			File:   "~/.config/filter-flow/logs/app.log",
		},
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	return LoadConfigWithOverrides(nil)
}

// LoadConfigWithOverrides loads configuration with optional command-line flag overrides.
// Precedence from lowest to highest: defaults, config file, environment, flags.
func LoadConfigWithOverrides(flagOverrides map[string]interface{}) (*Config, error) {
	config := DefaultConfig()

	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		if err := loadConfigFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := applyEnvironmentOverrides(config); err != nil {
		return nil, err
	}

	if flagOverrides != nil {
		if err := applyFlagOverrides(config, flagOverrides); err != nil {
			return nil, fmt.Errorf("failed to apply flag overrides: %w", err)
		}
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadConfigFromFile loads configuration from a JSON file
func loadConfigFromFile(config *Config, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeConfigs(config, &fileConfig)

	return nil
}

// applyEnvironmentOverrides overlays variables that are set; unset ones leave the field alone
func applyEnvironmentOverrides(config *Config) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment variables: %w", err)
	}

	return nil
}

// applyFlagOverrides applies command-line flag overrides to configuration
func applyFlagOverrides(config *Config, overrides map[string]interface{}) error {
	for key, value := range overrides {
		switch key {
		case "addr":
			if str, ok := value.(string); ok && str != "" {
				config.Server.Addr = str
			}
		case "base-url":
			if str, ok := value.(string); ok && str != "" {
				config.Server.BaseURL = str
			}
		case "backend":
			if str, ok := value.(string); ok && str != "" {
				config.Store.Backend = str
			}
		case "log-level":
			if str, ok := value.(string); ok && str != "" {
				config.Logging.Level = str
			}
		case "verbose":
			if b, ok := value.(bool); ok {
				config.Debug.Verbose = b
			}
		case "debug":
			if b, ok := value.(bool); ok {
				config.Debug.Enabled = b
			}
		default:
			return fmt.Errorf("unknown flag override: %s", key)
		}
	}

	return nil
}

// mergeConfigs merges source configuration into target configuration
func mergeConfigs(target, source *Config) {
	var mergeValues func(t, s reflect.Value)
	mergeValues = func(t, s reflect.Value) {
		if t.Kind() != s.Kind() {
			return
		}

		if t.Kind() == reflect.Struct {
			for i := range s.NumField() {
				mergeValues(t.Field(i), s.Field(i))
			}
		} else if s.Kind() == reflect.Bool {
			t.Set(s)
		} else if !s.IsZero() {
			t.Set(s)
		}
	}

	mergeValues(reflect.ValueOf(target).Elem(), reflect.ValueOf(source).Elem())
}

// validateConfig validates the configuration for common errors
func validateConfig(config *Config) error {
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf(
			"invalid log level: %s (must be debug, info, warn, or error)",
			config.Logging.Level,
		)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", config.Logging.Format)
	}

	validLogOutputs := map[string]bool{
		"stdout": true, "stderr": true, "file": true,
	}
	if !validLogOutputs[strings.ToLower(config.Logging.Output)] {
		return fmt.Errorf(
			"invalid log output: %s (must be stdout, stderr, or file)",
			config.Logging.Output,
		)
	}

	if !isBackend(config.Store.Backend) {
		return errors.NewBackendError(config.Store.Backend)
	}

	if config.Server.Addr == "" {
		return fmt.Errorf("server address must not be empty")
	}

	if strings.ContainsAny(config.Server.BaseURL, "?#") {
		return fmt.Errorf("invalid base URL: %s (must be a plain path)", config.Server.BaseURL)
	}

	if _, err := time.ParseDuration(config.Server.ReadTimeout); err != nil {
		return fmt.Errorf("invalid server read timeout: %s", config.Server.ReadTimeout)
	}

	if _, err := time.ParseDuration(config.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid server shutdown timeout: %s", config.Server.ShutdownTimeout)
	}

	return nil
}

func isBackend(name string) bool {
	for _, b := range Backends {
		if b == name {
			return true
		}
	}

	return false
}

// ReadTimeoutDuration returns the parsed server read timeout
func (c ServerConfig) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	return d
}

// ShutdownTimeoutDuration returns the parsed server shutdown timeout
func (c ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config) error {
	configPath := getConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ConfigPath returns the path the configuration file is read from
func ConfigPath() string {
	return getConfigPath()
}

// getConfigPath returns the path to the configuration file
func getConfigPath() string {
	if configPath := os.Getenv(EnvPrefix + "CONFIG"); configPath != "" {
		return expandPath(configPath)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(homeDir, ".config", appName, "config.json")
}

// expandPath expands ~ to home directory in file paths
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// ExpandAllPaths expands all paths in the configuration
func (c *Config) ExpandAllPaths() {
	c.Logging.File = expandPath(c.Logging.File)
}
