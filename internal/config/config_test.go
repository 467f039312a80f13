package config

import (
	"os"
	"path/filepath"
	"testing"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SHAREIT_TG_TOKEN", "test_token")

	yamlContent := `
database:
  path: "test.db"
api:
  http:
    port: 9000
notifications:
  enabled: true
  telegram:
    bot_token: "${SHAREIT_TG_TOKEN}"
    chat_id: 42
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "test.db", cfg.Database.Path)
	assert.Equal(t, 9000, cfg.API.HTTP.Port)
	assert.Equal(t, 8081, cfg.API.GRPC.Port)
	assert.Equal(t, "test_token", cfg.Notifications.Telegram.BotToken)
	assert.Equal(t, int64(42), cfg.Notifications.Telegram.ChatID)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		cfg := Config{Database: DatabaseConfig{Path: "path"}}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(_ *Config) {}},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "http port out of range", mutate: func(c *Config) { c.API.HTTP.Port = 70000 }, wantErr: true},
		{name: "negative rps", mutate: func(c *Config) { c.API.RateLimit.RPS = -1 }, wantErr: true},
		{
			name: "telegram token without chat",
			mutate: func(c *Config) {
				c.Notifications.Telegram.BotToken = "token"
			},
			wantErr: true,
		},
		{
			name: "telegram token with chat",
			mutate: func(c *Config) {
				c.Notifications.Telegram.BotToken = "token"
				c.Notifications.Telegram.ChatID = -100
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{Monitoring: MonitoringConfig{PrometheusEnabled: true}}
	cfg.applyDefaults()

	assert.Equal(t, "data/shareit.db", cfg.Database.Path)
	assert.Equal(t, 8080, cfg.API.HTTP.Port)
	assert.Equal(t, 8081, cfg.API.GRPC.Port)
	assert.Equal(t, 9090, cfg.Monitoring.PrometheusPort)
	assert.Equal(t, models.UserRateLimitRequests, cfg.API.UserRateLimit.Requests)
	assert.Equal(t, models.UserRateLimitWindow, cfg.API.UserRateLimit.WindowSeconds)
}

func TestLoadConfig_Sample(t *testing.T) {
	for _, key := range []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "REDIS_ADDRESS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "shareit", cfg.App.Name)
	assert.Equal(t, 8080, cfg.API.HTTP.Port)
	assert.Equal(t, 9090, cfg.Monitoring.PrometheusPort)
	assert.Equal(t, 60, cfg.API.UserRateLimit.Requests)
	assert.Empty(t, cfg.Redis.Address)
	assert.False(t, cfg.Notifications.Enabled)
}
