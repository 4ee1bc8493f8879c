package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if !cfg.SharedEnabled || !cfg.ReadOnly {
		t.Error("defaults should enable the shared tier in read-only mode")
	}
	if cfg.Codec != CodecMsgpack {
		t.Errorf("default codec = %q, want %q", cfg.Codec, CodecMsgpack)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "zero capacity", mutate: func(c *Config) { c.Capacity = 0 }, field: "Capacity"},
		{name: "zero shards", mutate: func(c *Config) { c.NumShards = 0 }, field: "NumShards"},
		{name: "zero ttl", mutate: func(c *Config) { c.TTL = 0 }, field: "TTL"},
		{name: "eviction too high", mutate: func(c *Config) { c.EvictionPercentage = 101 }, field: "EvictionPercentage"},
		{name: "unknown codec in copy mode", mutate: func(c *Config) { c.ReadOnly = false; c.Codec = "gob" }, field: "Codec"},
		{name: "unknown codec ignored in read-only mode", mutate: func(c *Config) { c.Codec = "gob" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
capacity: 500
ttl: 90s
read_only: false
codec: cbor
`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Capacity != 500 {
		t.Errorf("Capacity = %d, want 500", cfg.Capacity)
	}
	if cfg.TTL != 90*time.Second {
		t.Errorf("TTL = %v, want 90s", cfg.TTL)
	}
	if cfg.ReadOnly || cfg.Codec != CodecCBOR {
		t.Errorf("unexpected copy settings: read_only=%v codec=%q", cfg.ReadOnly, cfg.Codec)
	}
	if cfg.NumShards != DefaultConfig().NumShards || !cfg.SharedEnabled {
		t.Error("omitted fields should keep their defaults")
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	if _, err := ParseConfig([]byte("capacity: [")); err == nil {
		t.Error("expected a parse error")
	}
	if _, err := ParseConfig([]byte("capacity: -1")); err == nil {
		t.Error("expected a validation error")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.yaml")
	if err := os.WriteFile(path, []byte("shared_enabled: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SharedEnabled {
		t.Error("expected shared tier disabled")
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
