package config

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
)

// Server holds HTTP server settings for service mode.
type Server struct {
	Mode     string `mapstructure:"mode" default:"dev"`
	HTTPPort int    `mapstructure:"http_port" default:"8000"`
}

// Validator holds validation pipeline settings.
type Validator struct {
	NumWorkers     int           `mapstructure:"num_workers" default:"3"`
	DataFolder     string        `mapstructure:"data_folder"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" default:"30s"`
	MaxRetries     uint          `mapstructure:"max_retries" default:"4"`
}

// Configuration is the root configuration for the validator.
type Configuration struct {
	Server    Server    `mapstructure:"server"`
	Validator Validator `mapstructure:"validator"`
	LogLevel  string    `mapstructure:"log_level" default:"info"`
	LogFormat string    `mapstructure:"log_format" default:"console"`
}

// New returns a Configuration populated with defaults.
func New() (*Configuration, error) {
	cfg := &Configuration{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply configuration defaults: %w", err)
	}
	return cfg, nil
}

// Load builds the configuration from defaults overlaid with viper-bound
// values (flags, environment, optional config file).
func Load(v *viper.Viper) (*Configuration, error) {
	cfg, err := New()
	if err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the validator cannot run with.
func (c *Configuration) Validate() error {
	if c.Validator.NumWorkers < 1 {
		return fmt.Errorf("validator.num_workers must be at least 1")
	}
	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port out of range: %d", c.Server.HTTPPort)
	}
	switch c.Server.Mode {
	case "dev", "prod":
	default:
		return fmt.Errorf("server.mode must be dev or prod, got %q", c.Server.Mode)
	}
	return nil
}
