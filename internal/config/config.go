// Package config resolves pipeline settings from defaults, an optional
// YAML file and PAGEGEN_* environment variables, in rising precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// MaxWorkers caps the processing pool no matter how many CPUs the build
// machine has; source sets are small and disk-bound.
const MaxWorkers = 8

type Config struct {
	// SourceDir holds the spreadsheet content files.
	SourceDir string `mapstructure:"source_dir"`
	// CacheDir receives every generated artifact.
	CacheDir string `mapstructure:"cache_dir"`
	// SiteURL is the canonical site origin used in SEO artifacts.
	SiteURL string `mapstructure:"site_url"`
	// Workers overrides the processing pool size; 0 means one per CPU.
	Workers int    `mapstructure:"workers"`
	Port    string `mapstructure:"port"`
	LogJSON bool   `mapstructure:"log_json"`
}

// Load builds the configuration. cfgFile may be empty, in which case
// ./pagegen.yaml is used when present; a cfgFile given explicitly must
// exist.
func Load(cfgFile string) (Config, error) {
	v := viper.New()

	v.SetDefault("source_dir", "content")
	v.SetDefault("cache_dir", "cache")
	v.SetDefault("site_url", "https://www.example.com")
	v.SetDefault("workers", 0)
	v.SetDefault("port", "8080")
	v.SetDefault("log_json", false)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("pagegen")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PAGEGEN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.clamp()
	return cfg, nil
}

func (c *Config) clamp() {
	if c.Workers < 0 {
		c.Workers = 0
	}
	if c.Workers > MaxWorkers {
		c.Workers = MaxWorkers
	}
	c.SiteURL = strings.TrimRight(c.SiteURL, "/")
}

// EffectiveWorkers resolves the worker pool size: the configured value,
// or one per CPU, never more than MaxWorkers.
func (c Config) EffectiveWorkers() int {
	n := c.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > MaxWorkers {
		n = MaxWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (c Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source_dir is required")
	}
	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir is required")
	}
	u, err := url.Parse(c.SiteURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("site_url must be an absolute http(s) URL, got %q", c.SiteURL)
	}
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	return nil
}
