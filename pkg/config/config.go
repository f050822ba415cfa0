package config

// Package config provides a reusable loader for ebill-core configuration
// files and environment variables. It is versioned so that applications can
// depend on a stable API contract.
//
// Version: v0.1.0

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/bitbill-network/ebill-core/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config represents the unified configuration for an ebill-core node. It
// mirrors the structure of the YAML files under cmd/config.
type Config struct {
	Node struct {
		ID         string `mapstructure:"id" json:"id"`
		ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`
		DataDir    string `mapstructure:"data_dir" json:"data_dir"`
	} `mapstructure:"node" json:"node"`

	Relay struct {
		ListenAddr     string   `mapstructure:"listen_addr" json:"listen_addr"`
		BootstrapPeers []string `mapstructure:"bootstrap_peers" json:"bootstrap_peers"`
		MaxPerSecond   float64  `mapstructure:"max_per_second" json:"max_per_second"`
		OutboxInterval int      `mapstructure:"outbox_interval_seconds" json:"outbox_interval_seconds"`
	} `mapstructure:"relay" json:"relay"`

	Bitcoin struct {
		Network      string `mapstructure:"network" json:"network"`
		EsploraURL   string `mapstructure:"esplora_url" json:"esplora_url"`
		PollInterval int    `mapstructure:"poll_interval_seconds" json:"poll_interval_seconds"`
	} `mapstructure:"bitcoin" json:"bitcoin"`

	Storage struct {
		DBPath      string `mapstructure:"db_path" json:"db_path"`
		BillCacheSz int    `mapstructure:"bill_cache_size" json:"bill_cache_size"`
	} `mapstructure:"storage" json:"storage"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`

	Metrics struct {
		ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`
	} `mapstructure:"metrics" json:"metrics"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and returned.
//
// The function uses the provided environment name to merge additional config
// files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up overrides from the process environment; no .env file is read

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the EBILL_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("EBILL_ENV", ""))
}
