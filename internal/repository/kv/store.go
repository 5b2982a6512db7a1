// Package kv defines the narrow key-value contract the repositories consume:
// durable string keys mapping to opaque JSON values, individually atomic per
// key, with no cross-key transactions. List membership is maintained by the
// repositories through auxiliary list records.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("kv: key not found")

// Store is the durable key-value mapping backing all repositories.
type Store interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value at key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX writes value only if key is absent, reporting whether it won.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// MultiGet returns values aligned with keys; absent entries are nil.
	MultiGet(ctx context.Context, keys []string) ([][]byte, error)
}
