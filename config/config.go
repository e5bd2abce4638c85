// Package config provides YAML and environment based configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
	AppName string `mapstructure:"app_name"`

	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`

	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Model     ModelConfig     `mapstructure:"model"`
	Store     StoreConfig     `mapstructure:"store"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	LocalNode LocalNodeConfig `mapstructure:"local_node"`
	Log       LogConfig       `mapstructure:"log"`
}

type SchedulerConfig struct {
	// Strategy: heuristic or classifier.
	Strategy string `mapstructure:"strategy"`

	Weights WeightsConfig `mapstructure:"weights"`
}

type WeightsConfig struct {
	Headroom float64 `mapstructure:"headroom"`
	Latency  float64 `mapstructure:"latency"`
	Cost     float64 `mapstructure:"cost"`
	Affinity float64 `mapstructure:"affinity"`
}

type ModelConfig struct {
	// Path of the classifier artifact. A missing artifact is not fatal;
	// the engine starts in heuristic-only mode.
	Path string `mapstructure:"path"`
}

type StoreConfig struct {
	// Kind: memory or bolt.
	Kind   string `mapstructure:"kind"`
	File   string `mapstructure:"file"`
	Bucket string `mapstructure:"bucket"`
}

type SimulatorConfig struct {
	Enable     bool  `mapstructure:"enable"`
	IntervalMS int   `mapstructure:"interval_ms"`
	Seed       int64 `mapstructure:"seed"`
}

// LocalNodeConfig registers the host running the engine as an edge node
// fed by /proc readings instead of the simulator.
type LocalNodeConfig struct {
	Enable     bool    `mapstructure:"enable"`
	ID         string  `mapstructure:"id"`
	IntervalMS int     `mapstructure:"interval_ms"`
	MaxCPU     float64 `mapstructure:"max_cpu"`
	MaxRAM     float64 `mapstructure:"max_ram"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: list of outputs: stdout, stderr, or file paths
	Outputs []string `mapstructure:"outputs"`

	Rotation RotationConfig `mapstructure:"rotation"`

	Development bool `mapstructure:"development"`
}

// RotationConfig controls log file rotation. When enabled, every file
// path in Outputs becomes a rotated log with these settings.
type RotationConfig struct {
	Enable     bool `mapstructure:"enable"`
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		AppName: "codered",
		Address: "localhost",
		Port:    8000,
		Scheduler: SchedulerConfig{
			Strategy: "classifier",
			Weights: WeightsConfig{
				Headroom: 0.30,
				Latency:  0.25,
				Cost:     0.25,
				Affinity: 0.20,
			},
		},
		Model: ModelConfig{Path: "ml/model.json"},
		Store: StoreConfig{
			Kind:   "memory",
			File:   "decisions.db",
			Bucket: "decisions",
		},
		Simulator: SimulatorConfig{
			Enable:     true,
			IntervalMS: 2000,
		},
		LocalNode: LocalNodeConfig{
			Enable:     false,
			ID:         "Edge-Local",
			IntervalMS: 5000,
			MaxCPU:     4,
			MaxRAM:     8,
		},
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			Outputs:     []string{"stdout"},
			Development: true,
			Rotation: RotationConfig{
				Enable:     false,
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
	}
}

// Load reads configuration from the provided path (if non-empty),
// otherwise it searches common locations and supports environment
// overrides. Environment variables use the prefix CODERED and `.`/`-`
// are replaced with `_`. Example: CODERED_SCHEDULER_STRATEGY=heuristic.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CODERED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults for viper so env-only configs work
	v.SetDefault("app_name", cfg.AppName)
	v.SetDefault("address", cfg.Address)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("scheduler.strategy", cfg.Scheduler.Strategy)
	v.SetDefault("scheduler.weights.headroom", cfg.Scheduler.Weights.Headroom)
	v.SetDefault("scheduler.weights.latency", cfg.Scheduler.Weights.Latency)
	v.SetDefault("scheduler.weights.cost", cfg.Scheduler.Weights.Cost)
	v.SetDefault("scheduler.weights.affinity", cfg.Scheduler.Weights.Affinity)
	v.SetDefault("model.path", cfg.Model.Path)
	v.SetDefault("store.kind", cfg.Store.Kind)
	v.SetDefault("store.file", cfg.Store.File)
	v.SetDefault("store.bucket", cfg.Store.Bucket)
	v.SetDefault("simulator.enable", cfg.Simulator.Enable)
	v.SetDefault("simulator.interval_ms", cfg.Simulator.IntervalMS)
	v.SetDefault("simulator.seed", cfg.Simulator.Seed)
	v.SetDefault("local_node.enable", cfg.LocalNode.Enable)
	v.SetDefault("local_node.id", cfg.LocalNode.ID)
	v.SetDefault("local_node.interval_ms", cfg.LocalNode.IntervalMS)
	v.SetDefault("local_node.max_cpu", cfg.LocalNode.MaxCPU)
	v.SetDefault("local_node.max_ram", cfg.LocalNode.MaxRAM)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)

	if path == "" {
		if envPath := os.Getenv("CODERED_CONFIG"); envPath != "" {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("codered")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// Read config file if present; if not found, continue with defaults/env
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Scheduler.Strategy {
	case "heuristic", "classifier":
	default:
		return fmt.Errorf("unknown scheduler strategy %q", c.Scheduler.Strategy)
	}

	switch c.Store.Kind {
	case "memory", "bolt":
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	return nil
}
