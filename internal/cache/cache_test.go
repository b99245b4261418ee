package cache

import (
	"sync"
	"testing"
	"time"
)

func TestTTLCache_SetGet(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("a", 1, time.Minute)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit with value 1, got ok=%v v=%v", ok, v)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss for absent key")
	}
}

func TestTTLCache_Expiry(t *testing.T) {
	c := NewTTLCache[string, string]()

	// Freeze time via now indirection
	base := time.Now()
	now = func() time.Time { return base }
	t.Cleanup(func() { now = time.Now })

	c.Set("k", "v", time.Second)
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("expected hit before expiry")
	}

	base = base.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected miss after expiry")
	}
}

func TestTTLCache_NonPositiveTTLStoresNothing(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("a", 1, 0)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("zero ttl must not store")
	}
}

func TestTTLCache_DeleteClear(t *testing.T) {
	c := NewTTLCache[int, int]()
	c.Set(1, 10, time.Minute)
	c.Set(2, 20, time.Minute)
	c.Delete(1)
	if _, ok := c.Get(1); ok {
		t.Fatalf("expected key 1 to be deleted")
	}
	c.Clear()
	if _, ok := c.Get(2); ok {
		t.Fatalf("expected empty cache after Clear")
	}
}

func TestTTLCache_Concurrent(t *testing.T) {
	c := NewTTLCache[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < 100; r++ {
				c.Set(i, r, time.Minute)
				_, _ = c.Get(i)
			}
		}()
	}
	wg.Wait()
	for i := 0; i < 50; i++ {
		if _, ok := c.Get(i); !ok {
			t.Fatalf("expected hit for key %d", i)
		}
	}
}
