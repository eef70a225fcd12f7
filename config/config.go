package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Black-And-White-Club/pug-bot/app/observability"
	pugdomain "github.com/Black-And-White-Club/pug-bot/app/modules/pug/domain"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	PUG           PugConfig           `yaml:"pug"`
	HTTP          HTTPConfig          `yaml:"http"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration. An empty DSN keeps match
// history in memory.
type PostgresConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_URL"`
}

// NATSConfig holds NATS configuration. An empty URL selects the in-process bus.
type NATSConfig struct {
	URL        string `yaml:"url" env:"NATS_URL"`
	JetStream  bool   `yaml:"jetstream" env:"NATS_JETSTREAM"`
	QueueGroup string `yaml:"queue_group" env:"NATS_QUEUE_GROUP"`
}

// PugConfig sizes the game and throttles players.
type PugConfig struct {
	QueueSize     int     `yaml:"queue_size" env:"PUG_QUEUE_SIZE"`
	NumCaptains   int     `yaml:"num_captains" env:"PUG_NUM_CAPTAINS"`
	TeamSize      int     `yaml:"team_size" env:"PUG_TEAM_SIZE"`
	CaptainPolicy string  `yaml:"captain_policy" env:"PUG_CAPTAIN_POLICY"`
	AutoReset     bool    `yaml:"auto_reset" env:"PUG_AUTO_RESET"`
	CommandRate   float64 `yaml:"command_rate" env:"PUG_COMMAND_RATE"`
	CommandBurst  int     `yaml:"command_burst" env:"PUG_COMMAND_BURST"`
	HistoryLimit  int     `yaml:"history_limit" env:"PUG_HISTORY_LIMIT"`
}

// HTTPConfig holds the read API listener.
type HTTPConfig struct {
	Addr string `yaml:"addr" env:"HTTP_ADDR"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment  string  `yaml:"environment" env:"ENV"`
	LogLevel     string  `yaml:"log_level" env:"LOG_LEVEL"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	SampleRate   float64 `yaml:"sample_rate" env:"TRACE_SAMPLE_RATE"`
}

// Default returns the configuration used when neither the file nor the
// environment sets a value.
func Default() *Config {
	return &Config{
		PUG: PugConfig{
			QueueSize:     12,
			NumCaptains:   2,
			TeamSize:      6,
			CaptainPolicy: pugdomain.PolicyFirst,
			AutoReset:     true,
			CommandRate:   1,
			CommandBurst:  5,
			HistoryLimit:  100,
		},
		HTTP: HTTPConfig{Addr: ":8080"},
		Observability: ObservabilityConfig{
			LogLevel:   "info",
			SampleRate: 0.1,
		},
	}
}

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides. A missing file is not an error.
func LoadConfig(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the game sizing and throttle settings.
func (c *Config) Validate() error {
	game := c.GameConfig()
	if err := game.Validate(); err != nil {
		return fmt.Errorf("invalid pug config: %w", err)
	}
	if _, err := pugdomain.PolicyByName(c.PUG.CaptainPolicy, nil); err != nil {
		return fmt.Errorf("invalid pug config: %w", err)
	}
	if c.PUG.CommandRate <= 0 || c.PUG.CommandBurst <= 0 {
		return fmt.Errorf("invalid pug config: command rate and burst must be positive")
	}
	if c.PUG.HistoryLimit <= 0 {
		return fmt.Errorf("invalid pug config: history limit must be positive")
	}
	if c.Observability.SampleRate < 0 || c.Observability.SampleRate > 1 {
		return fmt.Errorf("invalid observability config: sample rate %v outside [0, 1]", c.Observability.SampleRate)
	}
	return nil
}

// GameConfig returns the sizing handed to each new game.
func (c *Config) GameConfig() pugdomain.GameConfig {
	return pugdomain.GameConfig{
		MaxMembers:  c.PUG.QueueSize,
		NumCaptains: c.PUG.NumCaptains,
		TeamSize:    c.PUG.TeamSize,
	}
}

func ToObsConfig(appCfg *Config, version string) observability.Config {
	return observability.Config{
		ServiceName:  "pug-bot",
		Environment:  appCfg.Observability.Environment,
		Version:      version,
		LogLevel:     appCfg.Observability.LogLevel,
		OTLPEndpoint: appCfg.Observability.OTLPEndpoint,
		SampleRate:   appCfg.Observability.SampleRate,
	}
}
