package store

import (
	"testing"

	"trainload/internal/workout"
)

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewSessionCache(2)
	a := workout.New(workout.SportCycling)
	b := workout.New(workout.SportCycling)
	cc := workout.New(workout.SportCycling)

	c.Put("a", a)
	c.Put("b", b)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should still be cached")
	}
	// a is now most-recently-used; inserting c should evict b.
	c.Put("c", cc)
	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted as least-recently-used")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("c should be cached")
	}
	if c.Len() != 2 {
		t.Fatalf("expected cache length 2, got %d", c.Len())
	}
}

func TestCacheUpdateExistingKeyDoesNotGrow(t *testing.T) {
	c := NewSessionCache(2)
	a := workout.New(workout.SportCycling)
	a2 := workout.New(workout.SportCycling)

	c.Put("a", a)
	c.Put("a", a2)
	if c.Len() != 1 {
		t.Fatalf("expected length 1 after updating existing key, got %d", c.Len())
	}
	got, ok := c.Get("a")
	if !ok || got != a2 {
		t.Fatal("expected the updated session to replace the original")
	}
}
