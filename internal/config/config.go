package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// ConfigFiles are the configuration file names looked up in the project root.
var ConfigFiles = []string{".geriassessrc.json", ".geriassessrc.yaml", ".geriassessrc.yml"}

// Config represents the geriassess configuration
type Config struct {
	Root          string   `mapstructure:"root" json:"root,omitempty"`
	SpecDir       string   `mapstructure:"specDir" json:"specDir"`
	StateDir      string   `mapstructure:"stateDir" json:"stateDir"`
	FormsFile     string   `mapstructure:"formsFile" json:"formsFile,omitempty"`
	Format        string   `mapstructure:"format" json:"format"`
	Output        string   `mapstructure:"output" json:"output,omitempty"`
	Quiet         bool     `mapstructure:"quiet" json:"quiet"`
	Verbose       bool     `mapstructure:"verbose" json:"verbose"`
	LogLevel      string   `mapstructure:"logLevel" json:"logLevel"`
	QualityPhrase string   `mapstructure:"qualityPhrase" json:"qualityPhrase,omitempty"`
	Order         []string `mapstructure:"order" json:"order,omitempty"`
}

// LoadConfig loads configuration from defaults, the first configuration
// file found in rootPath (or the working directory) and GERIASSESS_*
// environment variables.
func LoadConfig(rootPath string) (*Config, error) {
	// Set default values
	viper.SetDefault("root", ".")
	viper.SetDefault("specDir", "specs")
	viper.SetDefault("stateDir", ".geriassess")
	viper.SetDefault("format", "console")
	viper.SetDefault("quiet", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("logLevel", "warn")

	// Config file locations
	for _, name := range ConfigFiles {
		path := filepath.Join(rootPath, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
		break
	}

	// Environment variables
	viper.SetEnvPrefix("GERIASSESS")
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override root if provided
	if rootPath != "" {
		config.Root = rootPath
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Format != "console" && config.Format != "json" && config.Format != "markdown" {
		return fmt.Errorf("invalid format: %s. Must be 'console', 'json', or 'markdown'", config.Format)
	}

	if _, err := zerolog.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	if config.SpecDir == "" {
		return fmt.Errorf("specDir must not be empty")
	}
	if config.StateDir == "" {
		return fmt.Errorf("stateDir must not be empty")
	}

	if config.Output != "" {
		if info, err := os.Stat(config.Output); err == nil && info.IsDir() {
			return fmt.Errorf("output %s is a directory", config.Output)
		}
	}

	return nil
}

// SpecPath returns the specification directory resolved against Root.
func (c *Config) SpecPath() string {
	return c.resolve(c.SpecDir)
}

// StatePath returns the answer store directory resolved against Root.
func (c *Config) StatePath() string {
	return c.resolve(c.StateDir)
}

// FormsPath returns the registry override resolved against Root, or "" to
// use the built-in registry.
func (c *Config) FormsPath() string {
	if c.FormsFile == "" {
		return ""
	}
	return c.resolve(c.FormsFile)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, p)
}

// Level returns the configured log level.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.WarnLevel
	}
	return level
}

// SaveConfig saves the current configuration to a file
func SaveConfig(config *Config, path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
