package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.ConfigFile != "./config/teams.yml" {
		t.Errorf("Expected default config file, got '%s'", cfg.ConfigFile)
	}
	if cfg.StateDriver != "file" {
		t.Errorf("Expected state driver 'file', got '%s'", cfg.StateDriver)
	}
	if cfg.MaxFeedItems != 100 {
		t.Errorf("Expected max feed items 100, got %d", cfg.MaxFeedItems)
	}
	if cfg.RecentPerProduct != 5 {
		t.Errorf("Expected recent per product 5, got %d", cfg.RecentPerProduct)
	}
	if cfg.DescriptionFormat != "html" {
		t.Errorf("Expected description format 'html', got '%s'", cfg.DescriptionFormat)
	}
	if cfg.UserAgent != defaultUserAgent {
		t.Errorf("Expected default user agent, got '%s'", cfg.UserAgent)
	}
	if cfg.GetRequestTimeout() != 30*time.Second {
		t.Errorf("Expected request timeout 30s, got %v", cfg.GetRequestTimeout())
	}
	if cfg.GetRequestDelay() != time.Second {
		t.Errorf("Expected request delay 1s, got %v", cfg.GetRequestDelay())
	}
	if cfg.Serve {
		t.Error("Expected serve mode to be off by default")
	}
}

func TestLoadArgsOverrides(t *testing.T) {
	cfg, err := LoadArgs([]string{
		"--state-driver", "sqlite",
		"--max-feed-items", "25",
		"--description-format", "text",
		"--base-url", "https://feeds.example.com",
		"--request-delay", "0",
		"--serve",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.StateDriver != "sqlite" {
		t.Errorf("Expected state driver 'sqlite', got '%s'", cfg.StateDriver)
	}
	if cfg.MaxFeedItems != 25 {
		t.Errorf("Expected max feed items 25, got %d", cfg.MaxFeedItems)
	}
	if cfg.DescriptionFormat != "text" {
		t.Errorf("Expected description format 'text', got '%s'", cfg.DescriptionFormat)
	}
	if cfg.BaseUrl != "https://feeds.example.com" {
		t.Errorf("Expected base URL override, got '%s'", cfg.BaseUrl)
	}
	if cfg.GetRequestDelay() != 0 {
		t.Errorf("Expected no request delay, got %v", cfg.GetRequestDelay())
	}
	if !cfg.Serve {
		t.Error("Expected serve mode to be enabled")
	}
}

func TestLoadArgsRejectsUnknownDriver(t *testing.T) {
	_, err := LoadArgs([]string{"--state-driver", "mongo"})
	if err == nil {
		t.Error("Expected error for unknown state driver")
	}
}

func TestLoadArgsRejectsZeroFeedCap(t *testing.T) {
	_, err := LoadArgs([]string{"--max-feed-items", "0"})
	if err == nil {
		t.Error("Expected error for zero max feed items")
	}
}

func TestGetSchedulerIntervalFallback(t *testing.T) {
	cfg := &Cfg{SchedulerInterval: 0}
	if cfg.GetSchedulerInterval() != time.Hour {
		t.Errorf("Expected fallback interval 1h, got %v", cfg.GetSchedulerInterval())
	}
}
