package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lirany1/stress-insight/pkg/models"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "http://localhost:5000", cfg.PredictURL)
	assert.Equal(t, "localhost:8080", cfg.Addr())
	assert.Equal(t, "default", cfg.Theme)
	assert.Equal(t, []string{"html"}, cfg.ExportFormats)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"18-24", "25-34", "35-44", "45-54", "55+"}, cfg.FormOptions[models.FieldAge])
	for _, name := range models.FieldNames {
		assert.NotEmpty(t, cfg.FormOptions[name], "%s is offered as a select", name)
	}
	assert.Equal(t, []string{"Male", "Female"}, cfg.FormOptions[models.FieldGender])
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stress-insight.yml")
	content := `predict_url: http://model.internal:9000
port: 9090
theme: " dark "
export_formats: "html,png"
form_options:
  fatigue:
    - None
    - Some
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "http://model.internal:9000", cfg.PredictURL)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "localhost", cfg.Host, "keys missing from the file keep their defaults")
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, []string{"html", "png"}, cfg.ExportFormats)
	assert.Equal(t, []string{"None", "Some"}, cfg.FormOptions[models.FieldFatigue])
	assert.Equal(t, []string{"Male", "Female"}, cfg.FormOptions[models.FieldGender])
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile_Missing(t *testing.T) {
	cfg := NewConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yml")))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STRESS_PREDICT_URL", "https://stress.example.com")
	t.Setenv("STRESS_HOST", "0.0.0.0")
	t.Setenv("STRESS_PORT", "7000")
	t.Setenv("STRESS_THEME", "classic")
	t.Setenv("STRESS_OUTPUT_DIR", "/tmp/out")
	t.Setenv("STRESS_LOG_LEVEL", "debug")

	cfg := NewConfig()
	cfg.LoadFromEnv()

	assert.Equal(t, "https://stress.example.com", cfg.PredictURL)
	assert.Equal(t, "0.0.0.0:7000", cfg.Addr())
	assert.Equal(t, "classic", cfg.Theme)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFromEnv_BadPortIgnored(t *testing.T) {
	t.Setenv("STRESS_PORT", "eighty")

	cfg := NewConfig()
	cfg.LoadFromEnv()
	assert.Equal(t, 8080, cfg.Port)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := NewConfig()
	cfg.Port = 8181
	cfg.ExportFormats = []string{"json"}
	require.NoError(t, cfg.Save(path))

	loaded := NewConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, 8181, loaded.Port)
	assert.Equal(t, []string{"json"}, loaded.ExportFormats)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad scheme", func(c *Config) { c.PredictURL = "ftp://host" }, "http(s)"},
		{"no host", func(c *Config) { c.PredictURL = "http://" }, "no host"},
		{"port", func(c *Config) { c.Port = 70000 }, "port out of range"},
		{"unknown field", func(c *Config) { c.FormOptions["shoe_size"] = []string{"42"} }, "shoe_size"},
		{"export format", func(c *Config) { c.ExportFormats = []string{"pdf"} }, "pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
