// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Harvest HarvestConfig `mapstructure:"harvest"`
	Store   StoreConfig   `mapstructure:"store"`
	DB      DBConfig      `mapstructure:"db"`
	Convert ConvertConfig `mapstructure:"convert"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// HarvestConfig governs the page-harvesting pass.
type HarvestConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	PageMax         int           `mapstructure:"page_max"`
	BatchSize       int           `mapstructure:"batch_size"`
	UserAgent       string        `mapstructure:"user_agent"`
	VerifyTimeout   time.Duration `mapstructure:"verify_timeout"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxConnsPerHost int           `mapstructure:"max_conns_per_host"`
}

// StoreConfig sets the raw collection and missing-list file paths.
type StoreConfig struct {
	CollectionPath string `mapstructure:"collection_path"`
	MissingPath    string `mapstructure:"missing_path"`
}

// DBConfig controls access to the structured record store.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// ConvertConfig governs the compose/convert pass.
type ConvertConfig struct {
	BatchSize int `mapstructure:"batch_size"`
	// Workers caps the compose pool; 0 means min(32, 2x available parallelism).
	Workers int `mapstructure:"workers"`
}

// ServerConfig controls the ops HTTP server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PEALIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("harvest.base_url", "https://www.pealim.com")
	v.SetDefault("harvest.page_max", 10000)
	v.SetDefault("harvest.batch_size", 10)
	v.SetDefault("harvest.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("harvest.verify_timeout", "10s")
	v.SetDefault("harvest.fetch_timeout", "30s")
	v.SetDefault("harvest.max_conns", 10)
	v.SetDefault("harvest.max_conns_per_host", 5)
	v.SetDefault("store.collection_path", "data/dict_collection.json")
	v.SetDefault("store.missing_path", "data/dict_missing.json")
	v.SetDefault("db.table", "words")
	v.SetDefault("convert.batch_size", 100)
	v.SetDefault("convert.workers", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Harvest.BaseURL == "" {
		return fmt.Errorf("harvest.base_url must be set")
	}
	if c.Harvest.PageMax <= 0 {
		return fmt.Errorf("harvest.page_max must be > 0")
	}
	if c.Harvest.BatchSize <= 0 {
		return fmt.Errorf("harvest.batch_size must be > 0")
	}
	if c.Harvest.UserAgent == "" {
		return fmt.Errorf("harvest.user_agent must be set")
	}
	if c.Harvest.VerifyTimeout <= 0 {
		return fmt.Errorf("harvest.verify_timeout must be > 0")
	}
	if c.Harvest.FetchTimeout <= 0 {
		return fmt.Errorf("harvest.fetch_timeout must be > 0")
	}
	if c.Harvest.MaxConns <= 0 {
		return fmt.Errorf("harvest.max_conns must be > 0")
	}
	if c.Harvest.MaxConnsPerHost <= 0 {
		return fmt.Errorf("harvest.max_conns_per_host must be > 0")
	}
	if c.Store.CollectionPath == "" {
		return fmt.Errorf("store.collection_path must be set")
	}
	if c.Store.MissingPath == "" {
		return fmt.Errorf("store.missing_path must be set")
	}
	if c.Convert.BatchSize <= 0 {
		return fmt.Errorf("convert.batch_size must be > 0")
	}
	if c.Convert.Workers < 0 {
		return fmt.Errorf("convert.workers must be >= 0")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}
