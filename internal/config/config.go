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
	RPCURL       string
	Network      string
	PackageID    string
	PoolID       string
	Addresses    []string
	ExplorerHost string
	LogLevel     string
	Out          string
	PGDSN        string
	WALDir       string
	Sink         string
	Interval     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	RequestType  string
}

// Sinks accepted by the watch command.
const (
	SinkJSONL    = "jsonl"
	SinkPostgres = "postgres"
	SinkWAL      = "wal"
)

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LENDING")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc", "https://fullnode.testnet.sui.io:443")
	v.SetDefault("network", "testnet")
	v.SetDefault("out", "./data/snapshots.jsonl")
	v.SetDefault("wal-dir", "./data/wal")
	v.SetDefault("sink", SinkJSONL)
	v.SetDefault("interval", 30*time.Second)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")
	v.SetDefault("request-type", "WaitForLocalExecution")

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
		RPCURL:       v.GetString("rpc"),
		Network:      strings.ToLower(strings.TrimSpace(v.GetString("network"))),
		PackageID:    strings.TrimSpace(v.GetString("package-id")),
		PoolID:       strings.TrimSpace(v.GetString("pool-id")),
		Addresses:    getStringSlice(v, "address"),
		ExplorerHost: v.GetString("explorer-host"),
		LogLevel:     v.GetString("log-level"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		WALDir:       v.GetString("wal-dir"),
		Sink:         strings.ToLower(v.GetString("sink")),
		Interval:     v.GetDuration("interval"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		RequestType:  v.GetString("request-type"),
	}

	return cfg, nil
}

// RequirePool checks the identifiers every ledger command needs.
func (c Config) RequirePool() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.PackageID == "" {
		return fmt.Errorf("package id is required")
	}
	if c.PoolID == "" {
		return fmt.Errorf("pool id is required")
	}
	return nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
