// Package config loads and validates the service configuration from files
// and environment variables.
package config

import (
	"time"

	"github.com/turtacn/DealRadar/internal/infrastructure/database/postgres"
	"github.com/turtacn/DealRadar/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DealRadar/pkg/errors"
)

// Config is the root configuration of the service.
type Config struct {
	Server   ServerConfig      `mapstructure:"server" yaml:"server"`
	Database postgres.Config   `mapstructure:"database" yaml:"database"`
	Kafka    KafkaConfig       `mapstructure:"kafka" yaml:"kafka"`
	Log      logging.LogConfig `mapstructure:"log" yaml:"log"`
	Migrate  MigrateConfig     `mapstructure:"migrate" yaml:"migrate"`
}

// ServerConfig carries HTTP listener parameters.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// KafkaConfig carries event-publishing parameters.  Publishing is optional;
// with Enabled false the service runs with a no-op producer.
type KafkaConfig struct {
	Enabled  bool                 `mapstructure:"enabled" yaml:"enabled"`
	Producer kafka.ProducerConfig `mapstructure:"producer" yaml:"producer"`
}

// MigrateConfig controls schema migration at startup.
type MigrateConfig struct {
	Auto      bool   `mapstructure:"auto" yaml:"auto"`
	SourceURL string `mapstructure:"source_url" yaml:"source_url"`
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Validation("server.port must be in (0, 65535]")
	}
	if c.Database.Host == "" {
		return errors.Validation("database.host is required")
	}
	if c.Database.Database == "" {
		return errors.Validation("database.database is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Producer.Brokers) == 0 {
		return errors.Validation("kafka.producer.brokers is required when kafka is enabled")
	}
	if c.Migrate.Auto && c.Migrate.SourceURL == "" {
		return errors.Validation("migrate.source_url is required when migrate.auto is set")
	}
	return nil
}
