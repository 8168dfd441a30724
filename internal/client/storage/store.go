package storage

import "context"

//go:generate moq -out store_mock.go . Store

// Store defines the key-value blob storage used to persist the account collection.
// Values are opaque byte strings, written and read whole.
type Store interface {
	// Get returns the value stored under key.
	// Returns ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
}

// DefaultKey ключ, под которым хранится вся коллекция учетных записей
const DefaultKey = "accounts_data"
