package cache

import (
	"testing"
	"time"
)

func TestExpiry(t *testing.T) {
	c := NewInMemoryCache[string, int](time.Minute, 0)
	defer c.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1, 0)
	c.Set("b", 2, time.Second)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}

	now = now.Add(time.Second)
	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should expire exactly at ttl")
	}
	c.cleanup()
	if c.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", c.Size())
	}
}

func TestGetOrLoad(t *testing.T) {
	c := NewInMemoryCache[string, int](time.Minute, 0)
	defer c.Close()

	loads := 0
	load := func() int { loads++; return 42 }
	for i := 0; i < 3; i++ {
		if v := c.GetOrLoad("k", 0, load); v != 42 {
			t.Fatalf("GetOrLoad = %d", v)
		}
	}
	if loads != 1 {
		t.Fatalf("loads = %d, want 1", loads)
	}
}

func TestCloseStopsCleanup(t *testing.T) {
	c := NewInMemoryCache[string, int](time.Minute, time.Millisecond)
	c.Close()
	c.Close() // 幂等
}
