package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
			DataPath:    "/some/path",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Catalog: CatalogConfig{
			BaseURL: "http://localhost:3000",
		},
		Session: SessionConfig{
			TTL: 24 * time.Hour,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_CatalogURL(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"http://localhost:3000", true},
		{"https://api.example.com/v1", true},
		{"localhost:3000", false},
		{"/relative", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg := validConfig()
			cfg.Catalog.BaseURL = tt.url

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_SessionTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Session.TTL = 0
	assert.Error(t, cfg.Validate())
}

func TestExpandDataPath_Default(t *testing.T) {
	cfg := validConfig()
	cfg.App.DataPath = ""

	require.NoError(t, cfg.expandDataPath())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Bookstand"), cfg.App.DataPath)
}

func TestExpandPath_Tilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := expandPath("~/bookstand/data", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "bookstand", "data"), expanded)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment\nBOOKSTAND_TEST_KEY=hello\nBOOKSTAND_QUOTED=\"world\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Setenv("BOOKSTAND_TEST_KEY", "")
	t.Setenv("BOOKSTAND_QUOTED", "")
	os.Unsetenv("BOOKSTAND_TEST_KEY")
	os.Unsetenv("BOOKSTAND_QUOTED")

	require.NoError(t, loadEnvFile(envPath))

	assert.Equal(t, "hello", os.Getenv("BOOKSTAND_TEST_KEY"))
	assert.Equal(t, "world", os.Getenv("BOOKSTAND_QUOTED"))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("BOOKSTAND_PRECEDENCE", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "BOOKSTAND_PRECEDENCE", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "BOOKSTAND_PRECEDENCE", "default"))

	os.Unsetenv("BOOKSTAND_PRECEDENCE")
	assert.Equal(t, "default", getConfigValue("", "BOOKSTAND_PRECEDENCE", "default"))
}

func TestGetFloatConfigValue(t *testing.T) {
	t.Setenv("BOOKSTAND_RPS", "2.5")
	assert.Equal(t, 2.5, getFloatConfigValue("", "BOOKSTAND_RPS", 10))

	t.Setenv("BOOKSTAND_RPS", "not-a-number")
	assert.Equal(t, 10.0, getFloatConfigValue("", "BOOKSTAND_RPS", 10))
}
