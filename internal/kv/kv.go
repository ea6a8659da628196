// Package kv is the flat key-value store behind local mode.
package kv

import "context"

// Store holds opaque values under string keys.
type Store interface {
	// Get returns nil, nil when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
