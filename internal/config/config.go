// Package config layers command line flags over PQ_* environment
// variables and built-in defaults.
package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by pq, e.g.
// PQ_VERBOSE or PQ_FORMAT.
const EnvPrefix = "PQ"

// Config holds the settings shared by the commands.
type Config struct {
	Verbose     bool   `mapstructure:"verbose"`
	Format      string `mapstructure:"format"`
	Compression string `mapstructure:"compression"`
}

// Defaults returns the settings used when neither a flag nor an
// environment variable is set.
func Defaults() Config {
	return Config{Format: "json", Compression: "snappy"}
}

// New returns a viper instance reading PQ_* variables over the defaults.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	d := Defaults()
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("format", d.Format)
	v.SetDefault("compression", d.Compression)
	return v
}

// BindFlags lets the named flags of cmd override the matching keys. Flags
// the command does not define are skipped.
func BindFlags(v *viper.Viper, cmd *cobra.Command, keys ...string) error {
	for _, key := range keys {
		flag := cmd.Flags().Lookup(key)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", key, err)
		}
	}
	return nil
}

// Load resolves the settings.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return c, nil
}
