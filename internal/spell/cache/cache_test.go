package cache

import (
	"fmt"
	"testing"
)

func TestCachePutGet(t *testing.T) {
	c := New(100)
	k := Key{Word: "pltta", Threshold: 0.75}

	if _, ok := c.Get(k); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	c.Put(k, Result{Corrected: "pitta", OK: true})
	got, ok := c.Get(k)
	if !ok || got.Corrected != "pitta" || !got.OK {
		t.Errorf("Get = %+v, %v; want pitta hit", got, ok)
	}

	// Negative outcomes are cached too.
	neg := Key{Word: "zzz", Threshold: 0.75}
	c.Put(neg, Result{})
	got, ok = c.Get(neg)
	if !ok || got.OK {
		t.Errorf("negative result not cached correctly: %+v, %v", got, ok)
	}
}

func TestCacheThresholdIsPartOfKey(t *testing.T) {
	c := New(100)
	c.Put(Key{Word: "pltta", Threshold: 0.75}, Result{Corrected: "pitta", OK: true})
	if _, ok := c.Get(Key{Word: "pltta", Threshold: 0.9}); ok {
		t.Error("different threshold must miss")
	}
}

func TestCacheEvictsOldestQuarter(t *testing.T) {
	// Keys sharing a word land in one shard, so eviction is deterministic.
	// Capacity 64 gives 4 entries per shard.
	c := New(64)
	for i := 0; i < 4; i++ {
		c.Put(Key{Word: "same", Threshold: float64(i)}, Result{OK: true})
	}
	c.Put(Key{Word: "same", Threshold: 99}, Result{OK: true})

	if _, ok := c.Get(Key{Word: "same", Threshold: 0}); ok {
		t.Error("oldest entry should have been evicted")
	}
	for _, th := range []float64{1, 2, 3, 99} {
		if _, ok := c.Get(Key{Word: "same", Threshold: th}); !ok {
			t.Errorf("entry with threshold %v should have survived", th)
		}
	}
}

func TestCacheBounded(t *testing.T) {
	capacity := 160
	c := New(capacity)
	for i := 0; i < capacity*10; i++ {
		c.Put(Key{Word: fmt.Sprintf("word-%d", i), Threshold: 0.75}, Result{OK: true})
	}
	if got := c.Len(); got > capacity {
		t.Errorf("Len = %d, exceeds capacity %d", got, capacity)
	}
}

func TestCacheClear(t *testing.T) {
	c := New(100)
	c.Put(Key{Word: "pitta", Threshold: 0.75}, Result{OK: true})
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
}
