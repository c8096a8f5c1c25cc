package config

import "fmt"

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("match threshold %.2f out of range (0, 1]", c.MatchThreshold)
	}
	if c.MasterThreshold <= 0 || c.MasterThreshold > 1 {
		return fmt.Errorf("master threshold %.2f out of range (0, 1]", c.MasterThreshold)
	}
	if c.MatchBatchSize <= 0 {
		return fmt.Errorf("match batch size must be positive, got %d", c.MatchBatchSize)
	}
	if c.ScrapeRateDelay < 0 {
		return fmt.Errorf("scrape rate delay must not be negative")
	}
	if c.CacheEnabled && c.CacheDir == "" {
		return fmt.Errorf("cache enabled but cache dir is empty")
	}
	return nil
}
