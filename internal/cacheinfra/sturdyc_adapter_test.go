package cacheinfra

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 10000 {
		t.Errorf("expected Capacity to be 10000, got %d", cfg.Capacity)
	}

	if cfg.NumShards != 256 {
		t.Errorf("expected NumShards to be 256, got %d", cfg.NumShards)
	}

	if cfg.TTL != 24*time.Hour {
		t.Errorf("expected TTL to be 24h, got %v", cfg.TTL)
	}

	if cfg.EvictionPercentage != 10 {
		t.Errorf("expected EvictionPercentage to be 10, got %d", cfg.EvictionPercentage)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to be valid, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	base := DefaultConfig()

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "zero capacity", mutate: func(c *Config) { c.Capacity = 0 }, field: "Capacity"},
		{name: "zero shards", mutate: func(c *Config) { c.NumShards = 0 }, field: "NumShards"},
		{name: "zero ttl", mutate: func(c *Config) { c.TTL = 0 }, field: "TTL"},
		{name: "eviction too low", mutate: func(c *Config) { c.EvictionPercentage = 0 }, field: "EvictionPercentage"},
		{name: "eviction too high", mutate: func(c *Config) { c.EvictionPercentage = 101 }, field: "EvictionPercentage"},
		{name: "negative interval", mutate: func(c *Config) { c.EvictionInterval = -time.Second }, field: "EvictionInterval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)

			err := cfg.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestNewSturdycStore_InvalidConfig(t *testing.T) {
	store, err := NewSturdycStore(Config{})
	if err == nil {
		t.Fatal("expected error for empty config")
	}
	if store != nil {
		t.Error("expected nil store on error")
	}
}

func TestSturdycStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewSturdycStore(DefaultConfig())
	if err != nil {
		t.Fatalf("NewSturdycStore() failed: %v", err)
	}

	if _, found, err := store.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("expected clean miss, got found=%v err=%v", found, err)
	}

	payload := []byte("V[1,2,3]")
	if err := store.Set(ctx, "user_posts::1", payload, time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	// the store keeps its own copy
	payload[0] = 'X'

	got, found, err := store.Get(ctx, "user_posts::1")
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if string(got) != "V[1,2,3]" {
		t.Errorf("unexpected payload %q", got)
	}

	if err := store.Delete(ctx, "user_posts::1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, found, _ := store.Get(ctx, "user_posts::1"); found {
		t.Error("expected miss after delete")
	}
}

func TestSturdycStore_PerEntryExpiry(t *testing.T) {
	ctx := context.Background()
	store, err := NewSturdycStore(DefaultConfig())
	if err != nil {
		t.Fatalf("NewSturdycStore() failed: %v", err)
	}

	now := time.Date(2024, 10, 12, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "short", []byte("E"), 10*time.Second); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := store.Set(ctx, "long", []byte("E"), time.Hour); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	now = now.Add(11 * time.Second)

	if _, found, _ := store.Get(ctx, "short"); found {
		t.Error("expected short entry to be expired")
	}
	if _, found, _ := store.Get(ctx, "long"); !found {
		t.Error("expected long entry to still be present")
	}
}

func TestSturdycStore_TTLCappedAtMax(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.TTL = time.Minute
	store, err := NewSturdycStore(cfg)
	if err != nil {
		t.Fatalf("NewSturdycStore() failed: %v", err)
	}

	now := time.Date(2024, 10, 12, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "key", []byte("E"), 24*time.Hour); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, found, _ := store.Get(ctx, "key"); found {
		t.Error("expected entry to expire at the configured maximum")
	}
}

func TestSturdycStore_PingAndClose(t *testing.T) {
	store, err := NewSturdycStore(DefaultConfig())
	if err != nil {
		t.Fatalf("NewSturdycStore() failed: %v", err)
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
}
