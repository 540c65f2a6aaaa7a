package cache

import (
	"context"
	"time"
)

// CatalogPrefix namespaces every public read cached by the catalog.
// Admin mutations flush CatalogPrefix+"*".
const CatalogPrefix = "catalog:"

// Cache defines the contract for the read cache layer.
// Implementations: Redis (infrastructure/cache) and Noop.
type Cache interface {
	// Get loads the value stored under key and unmarshals it into dest.
	// found = false on a miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value (JSON encoded) with a TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes the given keys
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern (e.g. "catalog:*")
	DeletePattern(ctx context.Context, pattern string) error

	// Ping checks the connection
	Ping(ctx context.Context) error
}

// Noop is used when no cache backend is configured. Every Get misses.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error                       { return nil }
func (Noop) DeletePattern(context.Context, string) error                   { return nil }
func (Noop) Ping(context.Context) error                                    { return nil }
