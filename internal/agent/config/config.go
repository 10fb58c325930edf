package config

import (
	"time"

	"competiscope-agent/pkg/config"
)

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// Cache holds the analysis cache configuration.
type Cache struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Watchlist holds configuration for the scheduled watchlist digest.
type Watchlist struct {
	Enabled        bool     `mapstructure:"enabled"`
	CronExpression string   `mapstructure:"cron_expression"`
	Companies      []string `mapstructure:"companies"`
	Market         string   `mapstructure:"market"`
}

// Collectors holds configuration for the data collectors.
type Collectors struct {
	NewsFeedURL      string        `mapstructure:"news_feed_url"`
	NewsMaxAgeDays   int           `mapstructure:"news_max_age_days"`
	CompanyLookupURL string        `mapstructure:"company_lookup_url"`
	DataTTL          time.Duration `mapstructure:"data_ttl"`
}

// Config holds the full configuration for the agent service.
type Config struct {
	App        config.App    `mapstructure:"app"`
	Logger     config.Logger `mapstructure:"logger"`
	API        config.API    `mapstructure:"api"`
	Gemini     Gemini        `mapstructure:"gemini"`
	Cache      Cache         `mapstructure:"cache"`
	Telegram   Telegram      `mapstructure:"telegram"`
	Watchlist  Watchlist     `mapstructure:"watchlist"`
	Collectors Collectors    `mapstructure:"collectors"`
}

// Load loads the agent configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = time.Hour
	}
	if cfg.Collectors.DataTTL <= 0 {
		cfg.Collectors.DataTTL = 5 * time.Minute
	}
	if cfg.Collectors.NewsMaxAgeDays <= 0 {
		cfg.Collectors.NewsMaxAgeDays = 30
	}
	if cfg.Gemini.MaxRequestPerMinute <= 0 {
		cfg.Gemini.MaxRequestPerMinute = 10
	}
	if cfg.Gemini.MaxTokenPerMinute <= 0 {
		cfg.Gemini.MaxTokenPerMinute = 250000
	}
	return &cfg, nil
}
