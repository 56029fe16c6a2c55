// Package config loads the service configuration file.
package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/turing/internal/logging"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing default file is not an error.
const DefaultPath = "turing.yaml"

// Config is the service configuration.
type Config struct {
	Listen      string        `yaml:"listen" json:"listen"`
	MachinesDir string        `yaml:"machines_dir" json:"machines_dir"`
	Redis       RedisConfig   `yaml:"redis" json:"redis"`
	History     HistoryConfig `yaml:"history" json:"history"`
	Limits      LimitsConfig  `yaml:"limits" json:"limits"`
	Log         LogConfig     `yaml:"log" json:"log"`
	Metrics     bool          `yaml:"metrics" json:"metrics"`
}

// RedisConfig enables the shared Redis stores when URL is set.
type RedisConfig struct {
	URL    string `yaml:"url" json:"url"`
	Prefix string `yaml:"prefix" json:"prefix"`
	// TTL evicts instances idle for longer than this. Zero keeps them forever.
	TTL Duration `yaml:"ttl" json:"ttl"`
	// EncryptionKey, base64 encoded, seals instances at rest with AES-256-GCM.
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key"`
	// FallbackKeys still decrypt instances sealed before a key rotation.
	FallbackKeys []string `yaml:"fallback_keys" json:"fallback_keys"`
}

// Keys decodes the encryption keys. active is nil when encryption is off.
func (r RedisConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if r.EncryptionKey == "" {
		return nil, nil, nil
	}
	active, err = decodeKey(r.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("redis.encryption_key: %w", err)
	}
	for i, k := range r.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("redis.fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// HistoryConfig controls step recording.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Limit bounds the records retained per instance; 0 is unbounded.
	Limit int `yaml:"limit" json:"limit"`
}

// LimitsConfig guards resource usage.
type LimitsConfig struct {
	MaxRunSteps   int `yaml:"max_run_steps" json:"max_run_steps"`
	MaxTapeLength int `yaml:"max_tape_length" json:"max_tape_length"`
}

// LogConfig configures internal/logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// Duration reads "30s" style strings in both YAML and JSON.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:  ":8080",
		Redis:   RedisConfig{Prefix: "turing:"},
		History: HistoryConfig{Enabled: true},
		Limits: LimitsConfig{
			MaxRunSteps:   1_000_000,
			MaxTapeLength: 65536,
		},
		Log:     LogConfig{Level: "info", Format: "text"},
		Metrics: true,
	}
}

// Load reads a configuration file (YAML or JSON) over the defaults.
// When explicit is false a missing file yields the defaults.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate rejects values the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.History.Limit < 0 {
		errs = append(errs, fmt.Errorf("history.limit must not be negative"))
	}
	if c.Limits.MaxRunSteps < 0 {
		errs = append(errs, fmt.Errorf("limits.max_run_steps must not be negative"))
	}
	if c.Limits.MaxTapeLength < 0 {
		errs = append(errs, fmt.Errorf("limits.max_tape_length must not be negative"))
	}
	if c.Redis.TTL.Duration < 0 {
		errs = append(errs, fmt.Errorf("redis.ttl must not be negative"))
	}
	if _, _, err := c.Redis.Keys(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
