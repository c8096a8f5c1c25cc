package config

import (
	"testing"
	"time"
)

// Тесты загрузки конфигурации из окружения
func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.MatchThreshold != 0.7 {
		t.Errorf("MatchThreshold = %f, want 0.7", cfg.MatchThreshold)
	}
	if cfg.MasterThreshold != 0.75 {
		t.Errorf("MasterThreshold = %f, want 0.75", cfg.MasterThreshold)
	}
	if cfg.MatchBatchSize != 50 {
		t.Errorf("MatchBatchSize = %d, want 50", cfg.MatchBatchSize)
	}
	if !cfg.PublicEnabled || !cfg.StephanisEnabled {
		t.Error("both scrapers should be enabled by default")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MATCH_THRESHOLD", "0.8")
	t.Setenv("SCRAPE_RATE_DELAY", "5s")
	t.Setenv("SCRAPER_STEPHANIS_ENABLED", "false")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.MatchThreshold != 0.8 {
		t.Errorf("MatchThreshold = %f, want 0.8", cfg.MatchThreshold)
	}
	if cfg.ScrapeRateDelay != 5*time.Second {
		t.Errorf("ScrapeRateDelay = %v, want 5s", cfg.ScrapeRateDelay)
	}
	if cfg.StephanisEnabled {
		t.Error("StephanisEnabled should be false")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"empty port", func(c *Config) { c.Port = "" }, true},
		{"threshold above one", func(c *Config) { c.MatchThreshold = 1.5 }, true},
		{"zero master threshold", func(c *Config) { c.MasterThreshold = 0 }, true},
		{"negative batch size", func(c *Config) { c.MatchBatchSize = -1 }, true},
		{"cache without dir", func(c *Config) { c.CacheEnabled = true; c.CacheDir = "" }, true},
	}

	for _, tt := range tests {
		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("%s: LoadConfig: %v", tt.name, err)
		}
		tt.mutate(cfg)

		err = cfg.Validate()
		if tt.wantErr && err == nil {
			t.Errorf("%s: Validate() = nil, want error", tt.name)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: Validate() = %v, want nil", tt.name, err)
		}
	}
}
