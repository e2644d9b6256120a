package cache

import (
	"context"
	"testing"
	"time"
)

func TestLocalCache(t *testing.T) {
	config := LocalConfig{
		DefaultExpiration: 5 * time.Minute,
		CleanupInterval:   10 * time.Minute,
	}

	cache := NewLocalCache(config)
	defer cache.Close()

	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		key := "test_key"
		value := "test_value"

		if err := cache.Set(ctx, key, value, time.Minute); err != nil {
			t.Errorf("Failed to set cache: %v", err)
		}

		if retrieved, exists := cache.Get(ctx, key); !exists {
			t.Error("Cache value not found")
		} else if retrieved != value {
			t.Errorf("Expected %v, got %v", value, retrieved)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = cache.Set(ctx, "gone", 1, time.Minute)
		_ = cache.Delete(ctx, "gone")
		if cache.Exists(ctx, "gone") {
			t.Error("Deleted key still exists")
		}
	})

	t.Run("Expiration", func(t *testing.T) {
		_ = cache.Set(ctx, "short", 1, 10*time.Millisecond)
		time.Sleep(30 * time.Millisecond)
		if _, exists := cache.Get(ctx, "short"); exists {
			t.Error("Expired key still readable")
		}
	})
}

func TestGoCache(t *testing.T) {
	cache := NewGoCache(LocalConfig{DefaultExpiration: time.Minute, CleanupInterval: time.Minute})
	defer cache.Close()

	ctx := context.Background()
	if err := cache.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok := cache.Get(ctx, "k"); !ok || v != "v" {
		t.Errorf("Get = %v, %v; want v, true", v, ok)
	}
	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if cache.Exists(ctx, "k") {
		t.Error("Clear left key behind")
	}
}
