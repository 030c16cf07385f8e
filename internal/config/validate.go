package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Database.validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Consolidation.validate(); err != nil {
		return fmt.Errorf("consolidation: %w", err)
	}
	return nil
}

func (d *DatabaseConfig) validate() error {
	if d.MaxConns <= 0 {
		return fmt.Errorf("max_conns must be > 0 (got %d)", d.MaxConns)
	}
	if d.MinConns < 0 {
		return fmt.Errorf("min_conns must be >= 0 (got %d)", d.MinConns)
	}
	if d.MinConns > d.MaxConns {
		return fmt.Errorf("min_conns (%d) must not exceed max_conns (%d)", d.MinConns, d.MaxConns)
	}
	return nil
}

func (c *ConsolidationConfig) validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", c.Workers)
	}
	if c.LockRetries < 0 {
		return fmt.Errorf("lock_retries must be >= 0 (got %d)", c.LockRetries)
	}
	if c.LockRetryDelay < 0 {
		return fmt.Errorf("lock_retry_delay must be >= 0 (got %v)", c.LockRetryDelay)
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("run_timeout must be > 0 (got %v)", c.RunTimeout)
	}
	return nil
}
