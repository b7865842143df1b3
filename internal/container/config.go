package container

import (
	"fmt"
	"time"
)

// Config holds the configuration for all container components.
type Config struct {
	Database DatabaseConfig
	OpenAI   OpenAIConfig
	Push     PushConfig
	Outbox   OutboxConfig
}

// DatabaseConfig configures the SQLite database connection.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string

	// MaxOpenConns limits concurrent connections.
	MaxOpenConns int

	// MaxIdleConns sets the idle connection pool size.
	MaxIdleConns int

	// ConnMaxLifetime bounds connection reuse.
	ConnMaxLifetime time.Duration

	// MigrationsDir holds the schema migration files.
	MigrationsDir string
}

// OpenAIConfig configures the replacement suggester. An empty APIKey leaves
// the suggestion endpoint disabled rather than failing startup.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	PromptsPath string
	Timeout     time.Duration
}

// PushConfig configures push notification delivery.
type PushConfig struct {
	Endpoint string
	Timeout  time.Duration
	Enabled  bool
}

// OutboxConfig configures the outbox drain worker.
type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	BaseBackoff  time.Duration
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database max open connections must be positive")
	}
	if c.Outbox.PollInterval <= 0 {
		return fmt.Errorf("outbox poll interval must be positive")
	}
	if c.Outbox.BatchSize <= 0 {
		return fmt.Errorf("outbox batch size must be positive")
	}
	if c.Outbox.MaxAttempts <= 0 {
		return fmt.Errorf("outbox max attempts must be positive")
	}
	if c.OpenAI.APIKey != "" && c.OpenAI.Model == "" {
		return fmt.Errorf("openai model is required when an api key is set")
	}
	return nil
}
