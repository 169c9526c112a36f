// Package config loads the optional YAML ambient configuration layer.
// CLI positional arguments and flags always take priority over anything
// loaded here; this layer only supplies defaults a run can omit from the
// command line.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Log holds the optional logging configuration.
type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Config is the optional run configuration, loaded from an ambient YAML
// file plus SHARDBENCH_-prefixed environment variables.
type Config struct {
	GeneratorCore   int      `mapstructure:"generator_core"`
	ControllerCore  int      `mapstructure:"controller_core"`
	DurationSeconds int      `mapstructure:"duration"`
	StageCycles     []uint64 `mapstructure:"stage_cycles"`
	Log             Log      `mapstructure:"log"`
}

// defaults mirror the reference binaries' hardcoded constants, so a run
// with no config file at all still behaves like the original fixed
// binaries.
func defaults(v *viper.Viper) {
	v.SetDefault("generator_core", 7)
	v.SetDefault("controller_core", 5)
	v.SetDefault("duration", 60)
	v.SetDefault("stage_cycles", []uint64{1000, 1000, 1000})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load reads an optional YAML config file at path (may be empty, meaning
// "no file, defaults plus environment only") and returns the resulting
// Config.
func Load(path string) (Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("SHARDBENCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
