package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubspot-connector/internal/redis"
)

// stores returns every backend so the same contract runs against each.
func stores(t *testing.T) map[string]Store {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient(&redis.Config{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(time.Minute),
		"redis":  client,
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, name, store.Name())
			assert.NoError(t, store.Health())

			_, found, err := store.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, store.Set(ctx, "hubspot_state:o:u", "v1", time.Minute))
			value, found, err := store.Get(ctx, "hubspot_state:o:u")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "v1", value)

			require.NoError(t, store.Set(ctx, "hubspot_state:o:u", "v2", time.Minute))
			value, _, _ = store.Get(ctx, "hubspot_state:o:u")
			assert.Equal(t, "v2", value, "set overwrites")

			value, found, err = store.Take(ctx, "hubspot_state:o:u")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "v2", value)

			_, found, err = store.Take(ctx, "hubspot_state:o:u")
			require.NoError(t, err)
			assert.False(t, found, "take is single use")

			require.NoError(t, store.Set(ctx, "k", "v", time.Minute))
			require.NoError(t, store.Delete(ctx, "k"))
			_, found, _ = store.Get(ctx, "k")
			assert.False(t, found)

			assert.NoError(t, store.Delete(ctx, "never-set"))
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", "v", 20*time.Millisecond))
	require.NoError(t, store.Set(ctx, "forever", "v", 0))

	time.Sleep(50 * time.Millisecond)

	_, found, _ := store.Get(ctx, "short")
	assert.False(t, found)
	_, found, _ = store.Take(ctx, "short")
	assert.False(t, found)

	_, found, _ = store.Get(ctx, "forever")
	assert.True(t, found)
}

func TestMemoryStore_ConcurrentTake(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "hubspot_credentials:o:u", "blob", time.Minute))

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, found, _ := store.Take(ctx, "hubspot_credentials:o:u"); found {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	_, found, err := store.Get(ctx, "hubspot_credentials:o:u")
	require.NoError(t, err)
	assert.False(t, found)
}
