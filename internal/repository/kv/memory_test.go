package kv

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Get(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "a", []byte("one"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx, "a")
	if err != nil || string(got) != "one" {
		t.Fatalf("get = %q, %v", got, err)
	}

	if err := store.Delete(ctx, "a", "missing"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "a"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreSetNX(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	won, err := store.SetNX(ctx, "lock", []byte("1"), 0)
	if err != nil || !won {
		t.Fatalf("first SetNX = %v, %v", won, err)
	}
	won, err = store.SetNX(ctx, "lock", []byte("2"), 0)
	if err != nil || won {
		t.Fatalf("second SetNX should lose, got %v, %v", won, err)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Set(ctx, "short", []byte("x"), time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := store.Get(ctx, "short"); err != ErrNotFound {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestMemoryStoreMultiGetAlignment(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Set(ctx, "a", []byte("1"), 0)
	_ = store.Set(ctx, "c", []byte("3"), 0)

	vals, err := store.MultiGet(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("multiget: %v", err)
	}
	if len(vals) != 3 {
		t.Fatalf("expected 3 values, got %d", len(vals))
	}
	if string(vals[0]) != "1" || vals[1] != nil || string(vals[2]) != "3" {
		t.Fatalf("misaligned values: %q", vals)
	}
}
