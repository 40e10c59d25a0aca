package cache

import (
	"testing"
	"time"
)

func TestPopReturnsOnce(t *testing.T) {
	c := New[float64](time.Minute)
	c.Set("E1", 185.17)

	v, ok := c.Pop("E1")
	if !ok || v != 185.17 {
		t.Fatalf("Pop = %v, %v", v, ok)
	}

	if _, ok := c.Pop("E1"); ok {
		t.Fatalf("second Pop should miss")
	}
}

func TestGetKeepsValue(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("k", "v")

	for i := 0; i < 2; i++ {
		if v, ok := c.Get("k"); !ok || v != "v" {
			t.Fatalf("Get #%d = %q, %v", i, v, ok)
		}
	}

	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected miss after Delete")
	}
}

func TestExpiry(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	c := New[int](time.Minute)
	c.now = func() time.Time { return now }
	c.Set("k", 1)

	now = now.Add(2 * time.Minute)

	if _, ok := c.Pop("k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}
