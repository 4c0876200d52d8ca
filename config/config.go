package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string `mapstructure:"PORT"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	AutoMigrate    bool   `mapstructure:"AUTO_MIGRATE"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	ServiceToken   string `mapstructure:"SERVICE_TOKEN"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	FormRateLimit   int    `mapstructure:"FORM_RATE_LIMIT"`
	FormRateWindowS int    `mapstructure:"FORM_RATE_WINDOW_SECONDS"`

	R2AccountID       string `mapstructure:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID     string `mapstructure:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret string `mapstructure:"R2_ACCESS_KEY_SECRET"`
	R2Bucket          string `mapstructure:"R2_BUCKET_NAME"`
	CDNBaseURL        string `mapstructure:"CDN_BASE_URL"`

	DiscordWebhookURL string `mapstructure:"DISCORD_WEBHOOK_URL"`
}

var defaults = map[string]any{
	"PORT":                     "5200",
	"DATABASE_URL":             "",
	"AUTO_MIGRATE":             true,
	"JWT_SECRET":               "",
	"SERVICE_TOKEN":            "",
	"ALLOWED_ORIGINS":          "http://localhost:3000",
	"REDIS_ADDR":               "",
	"FORM_RATE_LIMIT":          5,
	"FORM_RATE_WINDOW_SECONDS": 600,
	"CLOUDFLARE_ACCOUNT_ID":    "",
	"R2_ACCESS_KEY_ID":         "",
	"R2_ACCESS_KEY_SECRET":     "",
	"R2_BUCKET_NAME":           "",
	"CDN_BASE_URL":             "",
	"DISCORD_WEBHOOK_URL":      "",
}

// Load reads configuration from the environment, optionally overlaid on an
// app.env file in path. A missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults double as the key registry: viper only unmarshals keys it knows about.
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Origins returns ALLOWED_ORIGINS trimmed and re-joined for fiber's cors config.
func (c Config) Origins() string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}

func (c Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2Bucket != ""
}
