package config

import "time"

// Config is the root application configuration.
type Config struct {
	Database      DatabaseConfig      `yaml:"database"`
	Log           LogConfig           `yaml:"log"`
	Consolidation ConsolidationConfig `yaml:"consolidation"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// ConsolidationConfig holds settings for the amendment consolidation worker.
type ConsolidationConfig struct {
	// InputDir is scanned for normalized amendment batch files (*.json).
	InputDir string `yaml:"input_dir" env:"CONSOLIDATION_INPUT_DIR" env-default:"./amendments"`

	// Workers caps how many codes are consolidated concurrently. Amendments
	// within one code always run sequentially.
	Workers int `yaml:"workers" env:"CONSOLIDATION_WORKERS" env-default:"4"`

	// LockRetries and LockRetryDelay govern how the worker handles a code
	// whose consolidation lock is held elsewhere.
	LockRetries    int           `yaml:"lock_retries"     env:"CONSOLIDATION_LOCK_RETRIES"     env-default:"3"`
	LockRetryDelay time.Duration `yaml:"lock_retry_delay" env:"CONSOLIDATION_LOCK_RETRY_DELAY" env-default:"2s"`

	// RunTimeout bounds a single amendment application.
	RunTimeout time.Duration `yaml:"run_timeout" env:"CONSOLIDATION_RUN_TIMEOUT" env-default:"5m"`

	// Migrate applies pending schema migrations before processing.
	Migrate bool `yaml:"migrate" env:"CONSOLIDATION_MIGRATE" env-default:"false"`
}
