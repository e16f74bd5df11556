// Package config loads the screener configuration from YAML, struct-tag
// defaults and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Slack struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"slack"`
	Notify struct {
		DryRun bool `yaml:"dry_run"`
	} `yaml:"notify"`
	DataSource struct {
		// broker, yahoo or mock. auto picks broker when base_url is set.
		Provider          string `yaml:"provider" default:"auto"`
		BaseURL           string `yaml:"base_url"`
		APIKey            string `yaml:"api_key"`
		RequestsPerSecond int    `yaml:"requests_per_second" default:"5"`
	} `yaml:"data_source"`
	Screening struct {
		Condition   string   `yaml:"condition_name" default:"default"`
		MaxStocks   int      `yaml:"max_stocks" default:"10"`
		HistoryDays int      `yaml:"history_days" default:"100"`
		Workers     int      `yaml:"workers" default:"4"`
		Watchlist   []string `yaml:"watchlist"`
		// Fundamentals fetches a quote per analyzed stock for the AI prompt.
		Fundamentals bool     `yaml:"fetch_fundamentals" default:"true"`
		Indices      []string `yaml:"market_indices" default:"[\"KOSPI\",\"KOSDAQ\"]"`
	} `yaml:"screening"`
	AI struct {
		Provider          string        `yaml:"provider" default:"none"`
		Model             string        `yaml:"model"`
		OpenAIKey         string        `yaml:"openai_api_key"`
		AnthropicKey      string        `yaml:"anthropic_api_key"`
		GeminiKey         string        `yaml:"gemini_api_key"`
		BaseURL           string        `yaml:"base_url"`
		MaxTokens         int           `yaml:"max_tokens" default:"2000"`
		Temperature       float64       `yaml:"temperature" default:"0.3"`
		RequestsPerMinute int           `yaml:"requests_per_minute" default:"20"`
		Timeout           time.Duration `yaml:"timeout" default:"60s"`
	} `yaml:"ai"`
	Cache struct {
		Backend string        `yaml:"backend" default:"memory"`
		TTL     time.Duration `yaml:"ttl" default:"6h"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"screener"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Schedule struct {
		ScreenCron string `yaml:"screen_cron" default:"0 40 15 * * 1-5"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/screener.db"`
		ExportDir  string `yaml:"export_dir"`
	} `yaml:"database"`
	HTTP struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Addr    string `yaml:"addr" default:":8080"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load applies defaults, then the YAML file at path (a missing file is not
// an error), then environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"TELEGRAM_BOT_TOKEN":       &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":         &c.Telegram.ChatID,
		"SLACK_WEBHOOK_URL":        &c.Slack.WebhookURL,
		"BROKER_BASE_URL":          &c.DataSource.BaseURL,
		"BROKER_API_KEY":           &c.DataSource.APIKey,
		"SCREENING_CONDITION_NAME": &c.Screening.Condition,
		"AI_PROVIDER":              &c.AI.Provider,
		"AI_MODEL":                 &c.AI.Model,
		"OPENAI_API_KEY":           &c.AI.OpenAIKey,
		"ANTHROPIC_API_KEY":        &c.AI.AnthropicKey,
		"GEMINI_API_KEY":           &c.AI.GeminiKey,
		"SQLITE_PATH":              &c.Database.SQLitePath,
		"LOG_LEVEL":                &c.Log.Level,
		"HTTPS_PROXY":              &c.Proxy,
		"CRON_SCREEN":              &c.Schedule.ScreenCron,
		"HTTP_ADDR":                &c.HTTP.Addr,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Backend = "redis"
	}
	if v := os.Getenv("MAX_STOCKS_TO_ANALYZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_STOCKS_TO_ANALYZE: %w", err)
		}
		c.Screening.MaxStocks = n
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RUN_ON_START: %w", err)
		}
		c.Schedule.RunOnStart = b
	}
	return nil
}

// AIKey returns the API key of the selected AI provider.
func (c *Config) AIKey() string {
	switch strings.ToLower(c.AI.Provider) {
	case "openai":
		return c.AI.OpenAIKey
	case "anthropic":
		return c.AI.AnthropicKey
	case "gemini":
		return c.AI.GeminiKey
	}
	return ""
}

// Validate checks that the configuration can run.
func (c *Config) Validate() error {
	var errs []error
	telegram := c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
	if !telegram && c.Slack.WebhookURL == "" && !c.Notify.DryRun {
		errs = append(errs, errors.New("a notification channel (telegram or slack) or notify.dry_run is required"))
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		errs = append(errs, errors.New("telegram.bot_token and telegram.chat_id must be set together"))
	}
	switch strings.ToLower(c.AI.Provider) {
	case "none", "":
	case "openai", "anthropic", "gemini":
		if c.AIKey() == "" {
			errs = append(errs, fmt.Errorf("ai provider %q requires an api key", c.AI.Provider))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ai.provider %q", c.AI.Provider))
	}
	if c.Screening.MaxStocks < 1 || c.Screening.MaxStocks > 100 {
		errs = append(errs, fmt.Errorf("screening.max_stocks must be between 1 and 100, got %d", c.Screening.MaxStocks))
	}
	if c.Screening.HistoryDays < 20 {
		errs = append(errs, fmt.Errorf("screening.history_days must be at least 20, got %d", c.Screening.HistoryDays))
	}
	switch c.Cache.Backend {
	case "memory", "redis", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown cache.backend %q", c.Cache.Backend))
	}
	switch c.DataSource.Provider {
	case "auto", "yahoo", "mock":
	case "broker":
		if c.DataSource.BaseURL == "" {
			errs = append(errs, errors.New("data_source.base_url is required for the broker provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider))
	}
	return errors.Join(errs...)
}
