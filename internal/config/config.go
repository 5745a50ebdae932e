// Package config loads process configuration for the ammsim harness from
// flags, environment variables, and an optional config file, the same
// layering the indexer's config loader uses.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every value the harness and its collaborators need at
// startup.
type Config struct {
	ChainID        uint64
	SwapFeeBps     uint64 // informational; the invariant check hard-codes 3/1000 per the core spec
	PostgresDSN    string
	LogLevel       string
	FeeToSetter    string
	EnableProtocol bool
}

// Load merges config file, environment variables (prefixed AMMSIM_), and
// flags into a Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AMMSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("chain-id", uint64(1))
	v.SetDefault("swap-fee-bps", uint64(30))
	v.SetDefault("postgres-dsn", "")
	v.SetDefault("log-level", "info")
	v.SetDefault("fee-to-setter", "")
	v.SetDefault("enable-protocol-fee", false)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("ammsim")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		ChainID:        v.GetUint64("chain-id"),
		SwapFeeBps:     v.GetUint64("swap-fee-bps"),
		PostgresDSN:    v.GetString("postgres-dsn"),
		LogLevel:       v.GetString("log-level"),
		FeeToSetter:    v.GetString("fee-to-setter"),
		EnableProtocol: v.GetBool("enable-protocol-fee"),
	}
	return cfg, nil
}
