package cache

import (
	"context"
	"testing"
	"time"

	"github.com/LilVoxy/harga_pangan/config"
	"github.com/LilVoxy/harga_pangan/pipeline"
)

func TestLRUWithTTL_GetSet(t *testing.T) {
	c, err := NewLRUWithTTL[string, int](2, 0)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = (%v, %v), want (1, true)", v, ok)
	}

	// "b" давно не использовался и вытесняется
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) should miss after eviction")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Stats = %+v, want 1 hit and 1 miss", stats)
	}
}

func TestLRUWithTTL_Expiration(t *testing.T) {
	c, err := NewLRUWithTTL[int, string](10, time.Minute)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(1, "fresh")
	c.Set(2, "stale")

	now = now.Add(30 * time.Second)
	if v, ok := c.Get(1); !ok || v != "fresh" {
		t.Errorf("Get(1) before ttl = (%q, %v)", v, ok)
	}

	now = now.Add(time.Minute)
	if _, ok := c.Get(1); ok {
		t.Error("Get(1) after ttl should miss")
	}
	if removed := c.CleanupExpired(); removed != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", removed)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestLRUFrameCache(t *testing.T) {
	fc, err := NewLRUFrameCache(4, time.Minute)
	if err != nil {
		t.Fatalf("failed to create frame cache: %v", err)
	}
	ctx := context.Background()

	frame := &pipeline.AlignedFrame{RegionID: 7}
	fc.Set(ctx, 7, frame)
	if got, ok := fc.Get(ctx, 7); !ok || got != frame {
		t.Errorf("Get(7) = (%v, %v), want stored frame", got, ok)
	}

	fc.Invalidate(ctx, 7)
	if _, ok := fc.Get(ctx, 7); ok {
		t.Error("Get(7) after Invalidate should miss")
	}
}

func TestEncodeDecodeFrame(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	frame := &pipeline.AlignedFrame{
		RegionID: 2,
		Dates:    []time.Time{d1},
		Columns:  []string{"Bawang Merah", "Tingkat Inflasi"},
		Cells:    [][]pipeline.Cell{{{Value: 35000, Valid: true}, {}}},
	}

	raw, err := EncodeFrame(frame)
	if err != nil {
		t.Fatalf("failed to encode frame: %v", err)
	}
	got, err := DecodeFrame(raw)
	if err != nil {
		t.Fatalf("failed to decode frame: %v", err)
	}

	if got.RegionID != 2 || !got.Dates[0].Equal(d1) {
		t.Errorf("decoded frame = %+v", got)
	}
	if !got.Cells[0][0].Valid || got.Cells[0][0].Value != 35000 {
		t.Errorf("cell[0][0] = %+v, want valid 35000", got.Cells[0][0])
	}
	if got.Cells[0][1].Valid {
		t.Error("absent cell must stay absent after decoding")
	}

	if _, err := DecodeFrame([]byte("not snappy")); err == nil {
		t.Error("expected error for corrupted payload")
	}
}

func TestNew_Backends(t *testing.T) {
	for _, backend := range []string{"memory", "none", "redis"} {
		c, err := New(config.CacheConfig{Backend: backend, Size: 8, TTL: time.Minute, RedisAddr: "localhost:6379"})
		if err != nil {
			t.Fatalf("New(%s) failed: %v", backend, err)
		}
		c.Close()
	}

	if _, err := New(config.CacheConfig{Backend: "memcached"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
