// Package kvstore provides key-value persistence for opaque serialized blobs.
// Settings and notification tracking state live here, independent of the
// record store.
package kvstore

import "context"

// Store persists opaque blobs by string key.
type Store interface {
	// Get returns the blob for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
