// Package repository persists the service's records through the kv.Store
// contract. Each record type keeps a parallel "list of ids" record because
// the store has no secondary indexes; every read-modify-write of a list
// record is serialized through a per-key lock so concurrent creations
// cannot drop entries.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"backoffice-service/internal/repository/kv"
)

// keyedLocks hands out one mutex per list key.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for key and returns its release func.
func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// listLocks is shared by all repositories in the process so two repositories
// pointed at the same list key still serialize.
var listLocks = newKeyedLocks()

func readList(ctx context.Context, store kv.Store, key string) ([]string, error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		if err == kv.ErrNotFound {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read list %s: %w", key, err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("corrupt list record %s: %w", key, err)
	}
	return ids, nil
}

func writeList(ctx context.Context, store kv.Store, key string, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, key, data, 0); err != nil {
		return fmt.Errorf("failed to write list %s: %w", key, err)
	}
	return nil
}

// appendToList adds id to the list under its lock. head controls whether the
// id goes to the front (most-recent-first lists) or the back.
func appendToList(ctx context.Context, store kv.Store, key, id string, head bool) error {
	unlock := listLocks.lock(key)
	defer unlock()

	ids, err := readList(ctx, store, key)
	if err != nil {
		return err
	}
	if head {
		ids = append([]string{id}, ids...)
	} else {
		ids = append(ids, id)
	}
	return writeList(ctx, store, key, ids)
}

// removeFromList deletes id from the list under its lock. Missing ids are
// not an error.
func removeFromList(ctx context.Context, store kv.Store, key, id string) error {
	unlock := listLocks.lock(key)
	defer unlock()

	ids, err := readList(ctx, store, key)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	return writeList(ctx, store, key, kept)
}
