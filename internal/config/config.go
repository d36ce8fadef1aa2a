package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Hub     HubConfig     `mapstructure:"hub" yaml:"hub"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port" yaml:"port"`
	Host string `mapstructure:"host" yaml:"host"`
}

// StorageConfig holds document snapshot storage configuration
type StorageConfig struct {
	Type string `mapstructure:"type" yaml:"type"` // "memory" or "file"
	Path string `mapstructure:"path" yaml:"path"` // Path for file storage
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // "json" or "text"
}

// HubConfig holds document hub configuration
type HubConfig struct {
	Section      string        `mapstructure:"section" yaml:"section"`           // Root section of the document list
	FetchTimeout time.Duration `mapstructure:"fetchTimeout" yaml:"fetchTimeout"` // Per-request timeout for remote documents
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			Type: "memory",
			Path: "./data",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Hub: HubConfig{
			Section:      "Swagger",
			FetchTimeout: 30 * time.Second,
		},
	}
}

// SetDefaults registers the defaults of Default with v
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.host", d.Server.Host)

	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.path", d.Storage.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("hub.section", d.Hub.Section)
	v.SetDefault("hub.fetchTimeout", d.Hub.FetchTimeout.String())
}

// Load reads the application configuration from v
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return cfg, nil
}
