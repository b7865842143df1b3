package config

import (
	"github.com/shiftwise/shiftwise-backend/internal/container"
	httpserver "github.com/shiftwise/shiftwise-backend/internal/interfaces/http"
	"github.com/shiftwise/shiftwise-backend/pkg/utils"
)

// ToContainerConfig converts the loaded configuration into the container's
// config structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			MigrationsDir:   c.Database.MigrationsDir,
		},
		OpenAI: container.OpenAIConfig{
			APIKey:      c.OpenAI.APIKey,
			Model:       c.OpenAI.Model,
			PromptsPath: c.OpenAI.PromptsPath,
			Timeout:     c.OpenAI.Timeout,
		},
		Push: container.PushConfig{
			Endpoint: c.Push.Endpoint,
			Timeout:  c.Push.Timeout,
			Enabled:  c.Push.Enabled,
		},
		Outbox: container.OutboxConfig{
			PollInterval: c.Outbox.PollInterval,
			BatchSize:    c.Outbox.BatchSize,
			MaxAttempts:  c.Outbox.MaxAttempts,
			BaseBackoff:  c.Outbox.BaseBackoff,
		},
	}
}

// ToServerConfig converts the server section into the HTTP adapter's config.
func (c *Config) ToServerConfig() httpserver.ServerConfig {
	return httpserver.ServerConfig{
		Host:         c.Server.Host,
		Port:         c.Server.Port,
		ReadTimeout:  c.Server.ReadTimeout,
		WriteTimeout: c.Server.WriteTimeout,
	}
}

// ToLoggerConfig converts the logger section into the logger package config.
func (c *Config) ToLoggerConfig() utils.LoggerConfig {
	return utils.LoggerConfig{
		Level:      c.Logger.Level,
		OutputPath: c.Logger.OutputPath,
		Format:     c.Logger.Format,
	}
}
