package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/objectroom/internal/core/models"
	"github.com/zeusync/objectroom/internal/core/observability/log"
)

type Config struct {
	Room    RoomConfig    `yaml:"room"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

type RoomConfig struct {
	MaxObjects   int               `yaml:"max_objects"`
	FloorHeight  float64           `yaml:"floor_height"`
	ScaleMin     float64           `yaml:"scale_min"`
	ScaleMax     float64           `yaml:"scale_max"`
	SpawnJitter  float64           `yaml:"spawn_jitter"`
	RemovalDelay time.Duration     `yaml:"removal_delay"`
	Sources      []models.SourceID `yaml:"sources"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	TickRate   int    `yaml:"tick_rate"`
	// AuthToken, when set, must be passed as ?token= on the websocket upgrade.
	AuthToken string `yaml:"auth_token"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Room: RoomConfig{
			MaxObjects:   20,
			FloorHeight:  0.25,
			ScaleMin:     0.1,
			ScaleMax:     3.0,
			SpawnJitter:  0.1,
			RemovalDelay: 300 * time.Millisecond,
			Sources:      []models.SourceID{models.SourceLeft, models.SourceRight, models.SourceMouse},
		},
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:8080",
			TickRate:   60,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	r := c.Room
	switch {
	case r.MaxObjects <= 0:
		return fmt.Errorf("%w: room.max_objects must be positive", ErrInvalidConfig)
	case r.ScaleMin <= 0 || r.ScaleMax < r.ScaleMin:
		return fmt.Errorf("%w: room.scale_min/scale_max must satisfy 0 < min <= max", ErrInvalidConfig)
	case r.SpawnJitter < 0:
		return fmt.Errorf("%w: room.spawn_jitter must not be negative", ErrInvalidConfig)
	case r.RemovalDelay < 0:
		return fmt.Errorf("%w: room.removal_delay must not be negative", ErrInvalidConfig)
	case len(r.Sources) == 0:
		return fmt.Errorf("%w: room.sources is empty", ErrInvalidConfig)
	}
	seen := make(map[models.SourceID]struct{}, len(r.Sources))
	for _, s := range r.Sources {
		if s == "" {
			return fmt.Errorf("%w: empty source id", ErrInvalidConfig)
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("%w: duplicate source %q", ErrInvalidConfig, s)
		}
		seen[s] = struct{}{}
	}
	if c.Server.TickRate <= 0 {
		return fmt.Errorf("%w: server.tick_rate must be positive", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// TickInterval is the frame period derived from the tick rate.
func (s ServerConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickRate)
}

// LogOptions converts the logging section for log.NewWithOptions.
func (l LoggingConfig) LogOptions() log.Options {
	level, _ := log.ParseLevel(l.Level)
	return log.Options{
		Level:      level,
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
	}
}
