package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // timezone names must resolve on hosts without zoneinfo

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// DefaultDateFormat is the pattern used for date fields without an override.
const DefaultDateFormat = "yyyy-MM-dd"

// Config represents the complete configuration for jsonbind
type Config struct {
	Binding BindingConfig `yaml:"binding"`
	Output  OutputConfig  `yaml:"output"`
	Dev     DevConfig     `yaml:"dev"`
}

// BindingConfig controls how JSON is mapped onto records
type BindingConfig struct {
	DateFormat string   `yaml:"date_format"`
	Timezone   string   `yaml:"timezone"`
	KeyStyle   KeyStyle `yaml:"key_style"`
	Path       string   `yaml:"path"` // designated path applied when none is given
}

// OutputConfig controls rendering of serialized records
type OutputConfig struct {
	Pretty bool   `yaml:"pretty"`
	Indent string `yaml:"indent"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// KeyStyle selects how a field's declared name becomes its JSON key when no
// explicit key is given.
type KeyStyle string

const (
	KeyStyleNone       KeyStyle = "none"
	KeyStyleSnake      KeyStyle = "snake"
	KeyStyleCamel      KeyStyle = "camel"
	KeyStyleLowerCamel KeyStyle = "lower_camel"
	KeyStyleKebab      KeyStyle = "kebab"
)

// Valid reports whether s is a known key style. The empty style means none.
func (s KeyStyle) Valid() bool {
	switch s {
	case "", KeyStyleNone, KeyStyleSnake, KeyStyleCamel, KeyStyleLowerCamel, KeyStyleKebab:
		return true
	}
	return false
}

// Apply converts a declared field name into a JSON key.
func (s KeyStyle) Apply(name string) string {
	switch s {
	case KeyStyleSnake:
		return strcase.ToSnake(name)
	case KeyStyleCamel:
		return strcase.ToCamel(name)
	case KeyStyleLowerCamel:
		return strcase.ToLowerCamel(name)
	case KeyStyleKebab:
		return strcase.ToKebab(name)
	default:
		return name
	}
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Binding: BindingConfig{
			DateFormat: DefaultDateFormat,
			Timezone:   "UTC",
			KeyStyle:   KeyStyleNone,
		},
		Output: OutputConfig{
			Pretty: false,
			Indent: "  ",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be caught by YAML decoding alone
func (c *Config) Validate() error {
	if !c.Binding.KeyStyle.Valid() {
		return fmt.Errorf("unknown key style %q", c.Binding.KeyStyle)
	}
	if strings.TrimSpace(c.Binding.DateFormat) == "" {
		return fmt.Errorf("date format must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the time zone dates are parsed and rendered in
func (c *Config) Location() (*time.Location, error) {
	if c.Binding.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Binding.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Binding.Timezone, err)
	}
	return loc, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonbind.yml", ".jsonbind.yaml", "jsonbind.yml", "jsonbind.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Overrides holds values given on the command line. Empty strings and nil
// pointers leave the file value in place.
type Overrides struct {
	DateFormat string
	Timezone   string
	KeyStyle   string
	Pretty     *bool
	Debug      bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if o.DateFormat != "" {
		cfg.Binding.DateFormat = o.DateFormat
	}
	if o.Timezone != "" {
		cfg.Binding.Timezone = o.Timezone
	}
	if o.KeyStyle != "" {
		cfg.Binding.KeyStyle = KeyStyle(o.KeyStyle)
	}
	if o.Pretty != nil {
		cfg.Output.Pretty = *o.Pretty
	}
	// Debug can only be switched on from the command line
	if o.Debug {
		cfg.Dev.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
