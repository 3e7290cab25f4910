// Package config implements opflow's layered configuration: compiled-in
// defaults overridden by a TOML file, read via dotted key names. It plays
// the role the original driver's figment-based config module plays, using
// spf13/viper as the Go idiom for the same layering.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// GlobalConfig holds the settings opflow itself reads, as opposed to the
// arbitrary user keys setup/build callbacks reach via Config.Get.
type GlobalConfig struct {
	// Ninja is the executable name to invoke in run mode.
	Ninja string `mapstructure:"ninja"`

	// KeepBuildDir, if true, preserves the scratch directory after a
	// successful run mode invocation.
	KeepBuildDir bool `mapstructure:"keep_build_dir"`
}

func defaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		Ninja:        "ninja",
		KeepBuildDir: false,
	}
}

// Config wraps the loaded, layered configuration data.
type Config struct {
	v      *viper.Viper
	Global GlobalConfig
}

// MissingConfigError reports that a required configuration key was absent.
type MissingConfigError struct {
	Key string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("missing config key: %s", e.Key)
}

// configPath returns ~/.config/opflow.toml, honoring $XDG_CONFIG_HOME.
func configPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, "opflow.toml")
}

// Load builds the layered configuration: compiled-in defaults, overridden by
// whatever opflow.toml provides (absence of the file is not an error — the
// defaults stand alone, exactly as the source driver's figment setup never
// requires the TOML file to exist).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath())
	v.SetConfigType("toml")

	defaults := defaultGlobalConfig()
	v.SetDefault("ninja", defaults.Ninja)
	v.SetDefault("keep_build_dir", defaults.KeepBuildDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := &Config{v: v}
	if err := v.Unmarshal(&cfg.Global); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Get looks up a dotted configuration key, reporting whether it was set
// (by a default, the file, or an override).
func (c *Config) Get(key string) (string, bool) {
	if !c.v.IsSet(key) {
		return "", false
	}
	return c.v.GetString(key), true
}

// SetKeepBuildDir overrides the keep_build_dir setting, e.g. from a CLI flag.
func (c *Config) SetKeepBuildDir(keep bool) {
	c.Global.KeepBuildDir = keep
	c.v.Set("keep_build_dir", keep)
}
