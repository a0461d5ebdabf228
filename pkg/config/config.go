package config

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/lirany1/stress-insight/pkg/models"
	"github.com/lirany1/stress-insight/pkg/themes"
)

// Config holds the settings of the prediction client
type Config struct {
	// Prediction service
	PredictURL string `mapstructure:"predict_url"`

	// Page server
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// Presentation
	Theme       string              `mapstructure:"theme"`
	FormOptions map[string][]string `mapstructure:"form_options"`

	// Export settings
	OutputDir     string   `mapstructure:"output_dir"`
	ExportFormats []string `mapstructure:"export_formats"`

	LogLevel string `mapstructure:"log_level"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		PredictURL:    "http://localhost:5000",
		Host:          "localhost",
		Port:          8080,
		Theme:         themes.DefaultTheme,
		FormOptions:   DefaultFormOptions(),
		OutputDir:     "reports",
		ExportFormats: []string{"html"},
		LogLevel:      "info",
	}
}

// DefaultFormOptions returns the choices offered by the form, one select per
// field. A field whose entry is removed from the config renders as free text.
func DefaultFormOptions() map[string][]string {
	return map[string][]string{
		models.FieldAge:             {"18-24", "25-34", "35-44", "45-54", "55+"},
		models.FieldGender:          {"Male", "Female"},
		models.FieldWorkHours:       {"Less than 8 hours", "8 hours", "9 - 10 hours", "More than 10 hours"},
		models.FieldScreenTime:      {"Less than 2 hours", "2 - 4 hours", "4 - 6 hours", "More than 6 hours"},
		models.FieldSleepTime:       {"Less than 4 hours", "4 - 6 hours", "7 - 8 hours", "More than 8 hours"},
		models.FieldExerciseFreq:    {"Never", "1 - 2 times per week", "3 - 4 times per week", "5+ times per week", "Daily"},
		models.FieldMood:            {"Stable", "Somewhat Stable", "Unstable"},
		models.FieldFatigue:         {"Low", "Moderate", "High"},
		models.FieldHeadache:        {"Never", "Sometimes", "Often"},
		models.FieldWorkLifeBalance: {"Balanced", "Somewhat Balanced", "Not Balanced"},
		models.FieldSocialSupport:   {"Strong", "Moderate", "Weak", "None"},
	}
}

// LoadConfig loads configuration from the first config file found in the
// working directory, then applies environment overrides
func LoadConfig() (*Config, error) {
	cfg := NewConfig()

	configPaths := []string{
		"stress-insight.yml",
		"stress-insight.yaml",
		"stress-insight.json",
		".stress-insight/config.yml",
	}

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.LoadFromFile(path); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
			break
		}
	}

	cfg.LoadFromEnv()
	return cfg, nil
}

// LoadFromFile loads configuration from a file (YAML, JSON, or TOML). Keys
// missing from the file keep their current values.
func (c *Config) LoadFromFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(c, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.WeaklyTypedInput = true
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
			trimStringHook,
		)
	})
}

// trimStringHook strips stray whitespace from scalar strings read from files
func trimStringHook(from, to reflect.Kind, data interface{}) (interface{}, error) {
	if from != reflect.String || to != reflect.String {
		return data, nil
	}
	return strings.TrimSpace(data.(string)), nil
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() {
	if predictURL := os.Getenv("STRESS_PREDICT_URL"); predictURL != "" {
		c.PredictURL = predictURL
	}

	if host := os.Getenv("STRESS_HOST"); host != "" {
		c.Host = host
	}

	if port := os.Getenv("STRESS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Port = p
		}
	}

	if theme := os.Getenv("STRESS_THEME"); theme != "" {
		c.Theme = theme
	}

	if dir := os.Getenv("STRESS_OUTPUT_DIR"); dir != "" {
		c.OutputDir = dir
	}

	if level := os.Getenv("STRESS_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	v.Set("predict_url", c.PredictURL)
	v.Set("host", c.Host)
	v.Set("port", c.Port)
	v.Set("theme", c.Theme)
	v.Set("form_options", c.FormOptions)
	v.Set("output_dir", c.OutputDir)
	v.Set("export_formats", c.ExportFormats)
	v.Set("log_level", c.LogLevel)

	return v.WriteConfig()
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.PredictURL)
	if err != nil {
		return fmt.Errorf("invalid predict_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("predict_url must be an http(s) URL, got %q", c.PredictURL)
	}
	if u.Host == "" {
		return fmt.Errorf("predict_url has no host: %q", c.PredictURL)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}

	for field := range c.FormOptions {
		if !isFormField(field) {
			return fmt.Errorf("form_options has unknown field %q", field)
		}
	}

	for _, format := range c.ExportFormats {
		switch format {
		case "html", "png", "json":
		default:
			return fmt.Errorf("unsupported export format %q", format)
		}
	}
	return nil
}

// Addr returns the listen address of the page server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func isFormField(name string) bool {
	for _, field := range models.FieldNames {
		if field == name {
			return true
		}
	}
	return false
}
