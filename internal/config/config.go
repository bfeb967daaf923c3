package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port              string
	DatabaseURL       string
	RedisURL          string
	TriggerSecret     string
	TwelveDataBaseURL string

	PollEnabled bool
	PollSecs    int

	TelegramBotToken string
	TelegramChatID   int64
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		TriggerSecret:    os.Getenv("TRIGGER_SECRET_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.TriggerSecret == "" {
		log.Println("Warning: TRIGGER_SECRET_KEY not set, /update-signals will reject all callers")
	}

	cfg.Port = strings.TrimSpace(os.Getenv("PORT"))
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	cfg.TwelveDataBaseURL = strings.TrimSpace(os.Getenv("TWELVEDATA_BASE_URL"))

	cfg.PollEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("POLL_ENABLED")), "true")

	cfg.PollSecs = 60
	if v := strings.TrimSpace(os.Getenv("POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollSecs = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = n
		}
	}

	return cfg
}
