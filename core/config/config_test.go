package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("RunMode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
	if cfg.Catalog.BaseURL != "https://shopapi.ir/api/v1/digikala" {
		t.Errorf("Catalog.BaseURL = %q", cfg.Catalog.BaseURL)
	}
	if cfg.Catalog.TimeoutSeconds != 5 {
		t.Errorf("Catalog.TimeoutSeconds = %d, want 5", cfg.Catalog.TimeoutSeconds)
	}
	if cfg.Catalog.DealsPageBudget != 5 {
		t.Errorf("Catalog.DealsPageBudget = %d, want 5", cfg.Catalog.DealsPageBudget)
	}
	if cfg.Bot.Name == "" {
		t.Error("Bot.Name default missing")
	}
}

func TestNormalizeRequiresTelegramToken(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	if err := Normalize(cfg); err == nil {
		t.Fatal("Normalize accepted empty telegram token")
	}
}

func TestNormalizeAllowsMissingCatalogToken(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog.Token = ""
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize rejected missing catalog token: %v", err)
	}
}

func TestNormalizeTrimsCatalogBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog.BaseURL = " https://api.example/v1/ "
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Catalog.BaseURL != "https://api.example/v1" {
		t.Errorf("Catalog.BaseURL = %q", cfg.Catalog.BaseURL)
	}
}

func TestNormalizeWebhookMode(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "webhook"
	if err := Normalize(cfg); err == nil {
		t.Fatal("Normalize accepted webhook mode without webhook settings")
	}

	cfg = validConfig()
	cfg.Telegram.RunMode = "Webhook"
	cfg.Webhook = WebhookConfig{URL: "https://bot.example/hook", Listen: "0.0.0.0", Port: 8443}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeWebhook {
		t.Errorf("RunMode = %q, want %q", cfg.Telegram.RunMode, RunModeWebhook)
	}
}

func TestNormalizeRunModeAliasAndInvalid(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize rejected polling alias: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("RunMode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}

	cfg = validConfig()
	cfg.Telegram.RunMode = "carrier-pigeon"
	err := Normalize(cfg)
	if err == nil || !strings.Contains(err.Error(), "run_mode") {
		t.Fatalf("Normalize(%q) err = %v", "carrier-pigeon", err)
	}
}

func TestNormalizeRateLimitExclusions(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "message"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != UpdateCallback {
		t.Errorf("ExcludeUpdates[0] = %q", cfg.RateLimit.ExcludeUpdates[0])
	}

	cfg = validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{"carrier-pigeon"}
	if err := Normalize(cfg); err == nil {
		t.Fatal("Normalize accepted unknown exclude_updates value")
	}
}

func TestNormalizeRejectsNegativeCatalogValues(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog.TimeoutSeconds = -1
	if err := Normalize(cfg); err == nil {
		t.Fatal("Normalize accepted negative catalog timeout")
	}

	cfg = validConfig()
	cfg.Catalog.DealsPageBudget = -1
	if err := Normalize(cfg); err == nil {
		t.Fatal("Normalize accepted negative page budget")
	}
}
