package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jask/stickyscroll/internal/scroll"
)

// Config holds application configuration.
type Config struct {
	Physics  PhysicsConfig
	Demo     DemoConfig
	Database DatabaseConfig
	Log      LogConfig
}

// PhysicsConfig tunes the fling model. Velocities are px/s.
type PhysicsConfig struct {
	Friction         float64
	StopVelocity     float64       `mapstructure:"stop_velocity"`
	MinFlingVelocity float64       `mapstructure:"min_fling_velocity"`
	MaxFlingVelocity float64       `mapstructure:"max_fling_velocity"`
	VelocityWindow   time.Duration `mapstructure:"velocity_window"`
	SampleGap        time.Duration `mapstructure:"sample_gap"`
}

// DemoConfig holds terminal demo settings.
type DemoConfig struct {
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	CellPx        int           `mapstructure:"cell_px"`
	HeaderLines   int           `mapstructure:"header_lines"`
	Items         int
}

// DatabaseConfig holds sqlite settings for the trace store.
type DatabaseConfig struct {
	Path string
}

// LogConfig holds log file settings.
type LogConfig struct {
	Path  string
	Level string
}

func defaultDataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "stickyscroll")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("physics.friction", scroll.DefaultFriction)
	v.SetDefault("physics.stop_velocity", scroll.DefaultStopVelocity)
	v.SetDefault("physics.min_fling_velocity", scroll.DefaultMinFlingVelocity)
	v.SetDefault("physics.max_fling_velocity", scroll.DefaultMaxFlingVelocity)
	v.SetDefault("physics.velocity_window", 100*time.Millisecond)
	v.SetDefault("physics.sample_gap", 40*time.Millisecond)
	v.SetDefault("demo.frame_interval", 16*time.Millisecond)
	v.SetDefault("demo.cell_px", 16)
	v.SetDefault("demo.header_lines", 6)
	v.SetDefault("demo.items", 120)
	v.SetDefault("database.path", filepath.Join(defaultDataDir(), "traces.db"))
	v.SetDefault("log.path", filepath.Join(defaultDataDir(), "stickyscroll.log"))
	v.SetDefault("log.level", "info")
}

// Default returns the built-in configuration without reading files or env.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}

// Load reads configuration from file and env. Env var overrides use prefix STICKYSCROLL_.
// A .env file in the working directory is loaded into the environment first.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("STICKYSCROLL_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "stickyscroll"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("STICKYSCROLL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Validate()
	return c, nil
}

// Validate puts nonsensical values back to their defaults.
func (c *Config) Validate() {
	d := Default()
	if c.Physics.Friction <= 0 {
		c.Physics.Friction = d.Physics.Friction
	}
	if c.Physics.StopVelocity <= 0 {
		c.Physics.StopVelocity = d.Physics.StopVelocity
	}
	if c.Physics.MinFlingVelocity <= 0 {
		c.Physics.MinFlingVelocity = d.Physics.MinFlingVelocity
	}
	if c.Physics.MaxFlingVelocity < c.Physics.MinFlingVelocity {
		c.Physics.MaxFlingVelocity = max(d.Physics.MaxFlingVelocity, c.Physics.MinFlingVelocity)
	}
	if c.Physics.VelocityWindow <= 0 {
		c.Physics.VelocityWindow = d.Physics.VelocityWindow
	}
	if c.Physics.SampleGap <= 0 {
		c.Physics.SampleGap = d.Physics.SampleGap
	}
	if c.Demo.FrameInterval <= 0 {
		c.Demo.FrameInterval = d.Demo.FrameInterval
	}
	if c.Demo.CellPx <= 0 {
		c.Demo.CellPx = d.Demo.CellPx
	}
	if c.Demo.HeaderLines < 0 {
		c.Demo.HeaderLines = d.Demo.HeaderLines
	}
	if c.Demo.Items <= 0 {
		c.Demo.Items = d.Demo.Items
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		c.Database.Path = d.Database.Path
	}
}

// TrackerOptions maps the physics section onto the gesture tracker.
func (p PhysicsConfig) TrackerOptions() scroll.TrackerOptions {
	return scroll.TrackerOptions{
		MinFlingVelocity: p.MinFlingVelocity,
		MaxFlingVelocity: p.MaxFlingVelocity,
		VelocityWindow:   p.VelocityWindow,
		SampleGap:        p.SampleGap,
	}
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("STICKYSCROLL_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "stickyscroll", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("physics.friction", cfg.Physics.Friction)
	v.Set("physics.stop_velocity", cfg.Physics.StopVelocity)
	v.Set("physics.min_fling_velocity", cfg.Physics.MinFlingVelocity)
	v.Set("physics.max_fling_velocity", cfg.Physics.MaxFlingVelocity)
	v.Set("physics.velocity_window", cfg.Physics.VelocityWindow.String())
	v.Set("physics.sample_gap", cfg.Physics.SampleGap.String())
	v.Set("demo.frame_interval", cfg.Demo.FrameInterval.String())
	v.Set("demo.cell_px", cfg.Demo.CellPx)
	v.Set("demo.header_lines", cfg.Demo.HeaderLines)
	v.Set("demo.items", cfg.Demo.Items)
	v.Set("database.path", cfg.Database.Path)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
