package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("TRIGGER_SECRET_KEY", "")
	t.Setenv("PORT", "")
	t.Setenv("POLL_SECS", "")
	t.Setenv("POLL_ENABLED", "")

	cfg := Load()
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.PollSecs != 60 {
		t.Fatalf("expected default poll secs 60, got %d", cfg.PollSecs)
	}
	if cfg.PollEnabled {
		t.Fatal("polling should be disabled by default")
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("TRIGGER_SECRET_KEY", "s3cret")
	t.Setenv("POLL_ENABLED", "true")
	t.Setenv("POLL_SECS", "120")
	t.Setenv("TELEGRAM_CHAT_ID", "-10012345")

	cfg := Load()
	if cfg.DatabaseURL != "postgres://example" || cfg.RedisURL != "redis:6379" || cfg.TriggerSecret != "s3cret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.PollEnabled || cfg.PollSecs != 120 {
		t.Fatalf("expected polling enabled at 120s, got %+v", cfg)
	}
	if cfg.TelegramChatID != -10012345 {
		t.Fatalf("expected chat id -10012345, got %d", cfg.TelegramChatID)
	}

	t.Setenv("POLL_SECS", "bad")
	cfg = Load()
	if cfg.PollSecs != 60 {
		t.Fatalf("invalid poll secs should fall back to default, got %d", cfg.PollSecs)
	}
}
