package cache

import (
	"fmt"
	"os"
	"time"

	"github.com/goliatone/go-tiered-cache/internal/cacheinfra"
	"gopkg.in/yaml.v3"
)

// Config exposes the tiered cache options. The region fields map onto the
// sturdyc client backing each shared region.
type Config struct {
	Capacity           int           `yaml:"capacity"`
	NumShards          int           `yaml:"num_shards"`
	TTL                time.Duration `yaml:"ttl"`
	EvictionPercentage int           `yaml:"eviction_percentage"`
	EvictionInterval   time.Duration `yaml:"eviction_interval"`

	// SharedEnabled turns the shared tier on. When false only the
	// session-local tier is used, invalidation still applies.
	SharedEnabled bool `yaml:"shared_enabled"`

	// ReadOnly shares stored values by identity across sessions. When false
	// shared entries hold an encoded payload and every session decodes its
	// own copy.
	ReadOnly bool `yaml:"read_only"`

	// Codec names the payload encoding used when ReadOnly is false.
	Codec string `yaml:"codec"`
}

// ConfigError reports an invalid configuration field.
type ConfigError = cacheinfra.ConfigError

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	region := cacheinfra.DefaultConfig()
	return Config{
		Capacity:           region.Capacity,
		NumShards:          region.NumShards,
		TTL:                region.TTL,
		EvictionPercentage: region.EvictionPercentage,
		EvictionInterval:   region.EvictionInterval,
		SharedEnabled:      true,
		ReadOnly:           true,
		Codec:              CodecMsgpack,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if err := c.Region().Validate(); err != nil {
		return err
	}
	if !c.ReadOnly {
		if _, err := NewCodec(c.Codec); err != nil {
			return &ConfigError{Field: "Codec", Message: err.Error()}
		}
	}
	return nil
}

// Region returns the settings used to build the shared region store.
func (c Config) Region() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}

// ParseConfig decodes a YAML document on top of DefaultConfig. Durations are
// written the way time.ParseDuration reads them ("5m", "30s").
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse cache config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read cache config %s: %w", path, err)
	}
	return ParseConfig(data)
}
