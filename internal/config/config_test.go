package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "SLACK_WEBHOOK_URL", "BROKER_BASE_URL",
	"BROKER_API_KEY", "SCREENING_CONDITION_NAME", "MAX_STOCKS_TO_ANALYZE", "AI_PROVIDER",
	"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "AI_MODEL", "REDIS_ADDR",
	"SQLITE_PATH", "LOG_LEVEL", "HTTPS_PROXY", "CRON_SCREEN", "HTTP_ADDR", "RUN_ON_START",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Screening.MaxStocks)
	assert.Equal(t, 100, cfg.Screening.HistoryDays)
	assert.Equal(t, "none", cfg.AI.Provider)
	assert.Equal(t, 2000, cfg.AI.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 6*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "0 40 15 * * 1-5", cfg.Schedule.ScreenCron)
	assert.Equal(t, "data/screener.db", cfg.Database.SQLitePath)
	assert.True(t, cfg.HTTP.Enabled)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Screening.Fundamentals)
	assert.Equal(t, []string{"KOSPI", "KOSDAQ"}, cfg.Screening.Indices)

	// no notification channel
	assert.Error(t, cfg.Validate())
	cfg.Notify.DryRun = true
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
telegram:
  bot_token: yaml-token
  chat_id: "100"
screening:
  condition_name: golden
  max_stocks: 5
  watchlist: ["005930", "000660"]
  fetch_fundamentals: false
  market_indices: [KOSPI]
cache:
  ttl: 30m
http:
  enabled: false
ai:
  provider: openai
  openai_api_key: sk-yaml
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("MAX_STOCKS_TO_ANALYZE", "7")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("RUN_ON_START", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "100", cfg.Telegram.ChatID)
	assert.Equal(t, "golden", cfg.Screening.Condition)
	assert.Equal(t, 7, cfg.Screening.MaxStocks)
	assert.Equal(t, 100, cfg.Screening.HistoryDays)
	assert.Equal(t, []string{"005930", "000660"}, cfg.Screening.Watchlist)
	assert.False(t, cfg.Screening.Fundamentals)
	assert.Equal(t, []string{"KOSPI"}, cfg.Screening.Indices)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.False(t, cfg.HTTP.Enabled)
	assert.True(t, cfg.Schedule.RunOnStart)
	assert.Equal(t, "sk-yaml", cfg.AIKey())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadInput(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "telegram: [unclosed"))
	assert.Error(t, err)

	t.Setenv("MAX_STOCKS_TO_ANALYZE", "ten")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "MAX_STOCKS_TO_ANALYZE")
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		cfg.Notify.DryRun = true
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown provider", func(c *Config) { c.AI.Provider = "llama" }, "unknown ai.provider"},
		{"provider without key", func(c *Config) { c.AI.Provider = "gemini" }, "requires an api key"},
		{"max stocks zero", func(c *Config) { c.Screening.MaxStocks = 0 }, "max_stocks"},
		{"max stocks too high", func(c *Config) { c.Screening.MaxStocks = 101 }, "max_stocks"},
		{"short history", func(c *Config) { c.Screening.HistoryDays = 19 }, "history_days"},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"broker without url", func(c *Config) { c.DataSource.Provider = "broker" }, "base_url"},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "t" }, "set together"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}
