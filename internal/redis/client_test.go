package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := NewClient(&Config{
		Address:  mr.Addr(),
		Password: "",
		DB:       0,
		PoolSize: 10,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestNewClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	t.Run("successful connection", func(t *testing.T) {
		client, err := NewClient(&Config{Address: mr.Addr(), PoolSize: 5})
		assert.NoError(t, err)
		assert.NotNil(t, client)
		assert.Equal(t, "redis", client.Name())
		assert.NoError(t, client.Close())
	})

	t.Run("sets default pool size", func(t *testing.T) {
		config := &Config{Address: mr.Addr()}
		client, err := NewClient(config)
		require.NoError(t, err)
		defer client.Close()
		assert.Equal(t, 10, config.PoolSize)
	})

	t.Run("nil config", func(t *testing.T) {
		client, err := NewClient(nil)
		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "redis config is required")
	})

	t.Run("connection failure", func(t *testing.T) {
		client, err := NewClient(&Config{Address: "invalid:99999"})
		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
	})
}

func TestClient_Health(t *testing.T) {
	client, mr := setupTestRedis(t)

	assert.NoError(t, client.Health())

	mr.Close()
	assert.Error(t, client.Health())
}

func TestClient_SetGetDelete(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "hubspot_state:o:u", `{"state":"n"}`, 600*time.Second))

	value, found, err := client.Get(ctx, "hubspot_state:o:u")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"state":"n"}`, value)
	assert.Equal(t, 600*time.Second, mr.TTL("hubspot_state:o:u"))

	require.NoError(t, client.Delete(ctx, "hubspot_state:o:u"))
	_, found, err = client.Get(ctx, "hubspot_state:o:u")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", 10*time.Second))

	assert.Equal(t, 10*time.Second, mr.TTL("k"))

	mr.FastForward(11 * time.Second)

	_, found, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_Take(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	t.Run("returns and removes", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "creds", `{"access_token":"a"}`, time.Minute))

		value, found, err := client.Take(ctx, "creds")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `{"access_token":"a"}`, value)
		assert.False(t, mr.Exists("creds"))

		_, found, err = client.Take(ctx, "creds")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("missing key", func(t *testing.T) {
		value, found, err := client.Take(ctx, "never-set")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, value)
	})

	t.Run("only one concurrent taker wins", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "race", "v", time.Minute))

		var wg sync.WaitGroup
		var mu sync.Mutex
		winners := 0
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, found, err := client.Take(ctx, "race")
				assert.NoError(t, err)
				if found {
					mu.Lock()
					winners++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, winners)
	})
}

func TestClient_CheckRateLimit(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	key := "ratelimit:authorize:o:u"
	for i := 0; i < 3; i++ {
		allowed, count, err := client.CheckRateLimit(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, i, count)
	}

	allowed, count, err := client.CheckRateLimit(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 3, count)
}

func TestClient_ClosedServer(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	mr.Close()

	assert.Error(t, client.Set(ctx, "k", "v", time.Second))
	_, _, err := client.Get(ctx, "k")
	assert.Error(t, err)
	_, _, err = client.Take(ctx, "k")
	assert.Error(t, err)
}
