// Package crypto encrypts values the connector keeps in its cache, so that
// OAuth tokens do not sit in Redis as plaintext.
//
// Values are sealed with AES-256-GCM under a key derived from
// CONFIG_ENCRYPTION_KEY with PBKDF2. Each value is bound to the cache key it
// is stored under through GCM's additional data, so a ciphertext copied to a
// different key fails to open.
//
// Example usage:
//
//	encryptor, err := crypto.NewEncryptor(os.Getenv("CONFIG_ENCRYPTION_KEY"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sealed, err := encryptor.Encrypt(`{"access_token":"..."}`, "hubspot_credentials:org:user")
//	plain, err := encryptor.Decrypt(sealed, "hubspot_credentials:org:user")
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"hubspot-connector/internal/common/errors"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keySalt       = "hubspot-connector-salt"
	keyIterations = 10000
	keyLength     = 32
)

// Encryptor seals and opens cache values. It is safe for concurrent use.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor derives a 32-byte AES key from key with PBKDF2-SHA256.
// Any non-empty key is accepted; config validation enforces the length.
func NewEncryptor(key string) (*Encryptor, error) {
	if key == "" {
		return nil, errors.ValidationError("encryption key cannot be empty")
	}

	derivedKey := pbkdf2.Key([]byte(key), []byte(keySalt), keyIterations, keyLength, sha256.New)

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, errors.InternalError("failed to create cipher", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.InternalError("failed to create GCM", err)
	}

	return &Encryptor{aead: aead}, nil
}

// Encrypt seals plaintext and returns base64(nonce || ciphertext). The
// associated data must be passed unchanged to Decrypt.
func (e *Encryptor) Encrypt(plaintext, associatedData string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.InternalError("failed to create nonce", err)
	}

	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), []byte(associatedData))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Tampered data, a wrong key or
// mismatched associated data all return an error.
func (e *Encryptor) Decrypt(ciphertext, associatedData string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.InternalError("failed to decode ciphertext", err)
	}

	nonceSize := e.aead.NonceSize()
	if len(data) < nonceSize {
		return "", errors.ValidationError("ciphertext too short")
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, sealed, []byte(associatedData))
	if err != nil {
		return "", errors.InternalError("failed to decrypt", err)
	}

	return string(plaintext), nil
}
