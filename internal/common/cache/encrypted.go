package cache

import (
	"context"
	"time"

	"hubspot-connector/internal/common/errors"
)

// Cipher seals values for a given cache key. crypto.Encryptor implements it.
type Cipher interface {
	Encrypt(plaintext, associatedData string) (string, error)
	Decrypt(ciphertext, associatedData string) (string, error)
}

// EncryptedStore encrypts values before handing them to the wrapped store.
// The cache key is used as associated data, so values cannot be moved
// between keys.
type EncryptedStore struct {
	store  Store
	cipher Cipher
}

// NewEncryptedStore wraps store
func NewEncryptedStore(store Store, cipher Cipher) *EncryptedStore {
	return &EncryptedStore{store: store, cipher: cipher}
}

func (e *EncryptedStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	sealed, err := e.cipher.Encrypt(value, key)
	if err != nil {
		return err
	}
	return e.store.Set(ctx, key, sealed, ttl)
}

func (e *EncryptedStore) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, found, err := e.store.Get(ctx, key)
	if err != nil || !found {
		return "", found, err
	}
	return e.open(key, sealed)
}

func (e *EncryptedStore) Delete(ctx context.Context, key string) error {
	return e.store.Delete(ctx, key)
}

func (e *EncryptedStore) Take(ctx context.Context, key string) (string, bool, error) {
	sealed, found, err := e.store.Take(ctx, key)
	if err != nil || !found {
		return "", found, err
	}
	return e.open(key, sealed)
}

func (e *EncryptedStore) Health() error {
	return e.store.Health()
}

// Name reports the wrapped backend
func (e *EncryptedStore) Name() string {
	return e.store.Name()
}

func (e *EncryptedStore) open(key, sealed string) (string, bool, error) {
	value, err := e.cipher.Decrypt(sealed, key)
	if err != nil {
		return "", false, errors.InternalError("failed to decrypt cached value", err).WithContext("key", key)
	}
	return value, true, nil
}
