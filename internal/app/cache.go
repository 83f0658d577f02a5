package app

import (
	"time"

	"hubspot-connector/internal/common/cache"
	"hubspot-connector/internal/common/logging"
	"hubspot-connector/internal/crypto"
	"hubspot-connector/internal/redis"
)

const memoryCleanupInterval = time.Minute

// initializeCache picks Redis when REDIS_ADDRESS is set and reachable, the
// in-process store otherwise, and wraps either in encryption when a key is set.
func (app *App) initializeCache() error {
	var store cache.Store

	if app.Config.RedisAddress != "" {
		client, err := redis.NewClient(&redis.Config{
			Address:  app.Config.RedisAddress,
			Password: app.Config.RedisPassword,
			DB:       app.Config.RedisDBNumber(),
			PoolSize: app.Config.RedisPoolSizeNumber(),
		})
		if err != nil {
			app.Logger.Warn("Redis initialization failed, falling back to in-memory cache",
				logging.Err(err))
		} else {
			app.RedisClient = client
			store = client
			app.Logger.Info("Cache: Redis", logging.String("address", app.Config.RedisAddress))
		}
	}

	if store == nil {
		store = cache.NewMemoryStore(memoryCleanupInterval)
		app.Logger.Info("Cache: in-memory (single instance only)")
	}

	if app.Config.EncryptionKey != "" {
		encryptor, err := crypto.NewEncryptor(app.Config.EncryptionKey)
		if err != nil {
			return err
		}
		store = cache.NewEncryptedStore(store, encryptor)
		app.Logger.Info("Cache encryption: enabled")
	}

	app.Cache = store
	return nil
}
