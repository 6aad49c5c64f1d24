package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL          string
	IndexerURL      string
	MirrorURL       string
	RouterAddress   string
	RouterAccountID string
	WrappedNative   string
	PollInterval    time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	PGDSN           string
	SettingsPath    string
	JournalPath     string
	LogLevel        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LIQUIDITY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("mirror-url", "https://mainnet-public.mirrornode.hedera.com")
	v.SetDefault("poll-interval", 30*time.Second)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("settings-path", "./data/settings.json")
	v.SetDefault("journal-path", "./data/journal.jsonl")
	v.SetDefault("log-level", "info")

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
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:          v.GetString("rpc"),
		IndexerURL:      v.GetString("indexer"),
		MirrorURL:       v.GetString("mirror-url"),
		RouterAddress:   v.GetString("router-address"),
		RouterAccountID: v.GetString("router-account"),
		WrappedNative:   v.GetString("wrapped-native"),
		PollInterval:    v.GetDuration("poll-interval"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		PGDSN:           v.GetString("pg-dsn"),
		SettingsPath:    v.GetString("settings-path"),
		JournalPath:     v.GetString("journal-path"),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}
