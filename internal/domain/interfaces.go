package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// KVStore is the durable key-value contract the progress engine and the
// study library persist through. Each Set is independently durable.
// Implemented by infra/sqlite.DB and infra/redis.Store.
type KVStore interface {
	// Get returns the stored value. ok is false if the key was never set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any prior value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
