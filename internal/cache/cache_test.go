package cache

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(maxSize int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	c := NewLRUCache[string](maxSize, ttl)
	clock := &fakeClock{t: time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)}
	c.now = clock.now
	return c, clock
}

func TestLRUCache_GetSetExpire(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)

	c.Set("data.json", "v1")
	if got, ok := c.Get("data.json"); !ok || got != "v1" {
		t.Fatalf("Get() = %q, %v", got, ok)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if _, ok := c.Get("data.json"); ok {
		t.Fatal("entry should have expired")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry not removed, size=%d", c.Size())
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a was recently used and should remain")
	}
	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
}

func TestLRUCache_DisabledWithoutTTL(t *testing.T) {
	c, _ := newTestCache(2, 0)
	c.Set("a", "1")
	if _, ok := c.Get("a"); ok || c.Size() != 0 {
		t.Fatal("zero ttl should disable caching")
	}
}

func TestLRUCache_DeleteAndClear(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("a should be deleted")
	}
	if n := c.Clear(); n != 1 || c.Size() != 0 {
		t.Fatalf("Clear() = %d, size=%d", n, c.Size())
	}
	c.Set("c", "3")
	if _, ok := c.Get("c"); !ok {
		t.Fatal("cache unusable after Clear")
	}
}

func TestManager_Sweep(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	clock.t = clock.t.Add(30 * time.Second)
	c.Set("c", "3")
	clock.t = clock.t.Add(45 * time.Second)

	m := NewManager()
	m.Register(c)
	var reported int
	m.OnClean = func(n int) { reported = n }

	if n := m.Sweep(); n != 2 || reported != 2 {
		t.Fatalf("Sweep() = %d, reported %d", n, reported)
	}
	if c.Size() != 1 {
		t.Fatalf("size = %d, want 1", c.Size())
	}
}

func TestManager_RunStopsWithContext(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Millisecond) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
