// Package cache provides the short-lived key-value store that carries OAuth
// state, PKCE verifiers and token responses between requests.
//
// Two backends implement Store:
//
//   - MemoryStore wraps github.com/patrickmn/go-cache for single-instance
//     deployments and tests.
//   - redis.Client (internal/redis) wraps github.com/go-redis/redis/v8 when
//     state has to be shared across instances.
//
// EncryptedStore decorates either backend and seals every value with AES-GCM
// before it reaches the backend.
//
// Every entry carries an expiry. Take reads and removes a key in one atomic
// step, which gives OAuth state and credentials their single-use semantics.
//
// Usage:
//
//	store := cache.NewMemoryStore(time.Minute)
//	_ = store.Set(ctx, "hubspot_state:org:user", stateJSON, 600*time.Second)
//	value, found, err := store.Take(ctx, "hubspot_state:org:user")
package cache
