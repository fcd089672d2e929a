// Package config loads the application configuration from defaults, an
// optional physim.yaml and PHYSIM_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zeusync/physim/internal/core/observability/log"
	"github.com/zeusync/physim/internal/core/systems/physics/engine"
	"github.com/zeusync/physim/internal/render/terminal"
	"github.com/zeusync/physim/internal/server"
)

const (
	EnvPrefix = "PHYSIM"
	FileName  = "physim"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Logger log.Config      `mapstructure:"logger"`
	Engine engine.Config   `mapstructure:"engine"`
	Loop   LoopConfig      `mapstructure:"loop"`
	Server server.Config   `mapstructure:"server"`
	Viewer terminal.Config `mapstructure:"viewer"`
	// Scene is a builtin scene name or a path to a scene file.
	Scene string `mapstructure:"scene"`
}

type LoopConfig struct {
	FrameInterval time.Duration `mapstructure:"frame_interval"`
}

// SetDefaults registers every key, which also makes every key reachable
// through the environment.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.file", "")
	v.SetDefault("logger.max_size_mb", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age_days", 14)
	v.SetDefault("logger.compress", false)

	// -- Engine --
	v.SetDefault("engine.tick_length", engine.DefaultTickLength)
	v.SetDefault("engine.time_ratio", engine.DefaultTimeRatio)
	v.SetDefault("engine.restitution", engine.DefaultRestitution)

	// -- Loop --
	v.SetDefault("loop.frame_interval", "16ms")

	// -- Server --
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.write_timeout", "2s")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("server.send_buffer", 16)
	v.SetDefault("server.quic_addr", "")
	v.SetDefault("server.quic_cert_file", "")
	v.SetDefault("server.quic_key_file", "")

	// -- Viewer --
	v.SetDefault("viewer.center.x", 0.0)
	v.SetDefault("viewer.center.y", 10.0)
	v.SetDefault("viewer.width", 30.0)

	v.SetDefault("scene", "drop")
}

// Load reads file, or physim.yaml from the working directory when file is
// empty, layered over the defaults and under the environment.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("%w: logger: %w", ErrInvalid, err)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Loop.FrameInterval <= 0 {
		return fmt.Errorf("%w: loop.frame_interval must be positive", ErrInvalid)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Viewer.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
