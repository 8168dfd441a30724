// Package sealed wraps a Store so that every value is encrypted at rest.
//
// The encryption key is derived from a passphrase with Argon2id. Each value key
// gets its own random salt, stored in the wrapped Store under "<key>.salt".
package sealed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iudanet/accountkeeper/internal/client/storage"
	"github.com/iudanet/accountkeeper/internal/crypto"
)

const saltSuffix = ".salt"

// Storage encrypts values before handing them to the wrapped Store
type Storage struct {
	inner      storage.Store
	keys       map[string][]byte
	passphrase string
	mu         sync.Mutex
}

// New wraps inner with AES-256-GCM encryption keyed by passphrase
func New(inner storage.Store, passphrase string) (*Storage, error) {
	if inner == nil {
		return nil, fmt.Errorf("inner store cannot be nil")
	}
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}

	return &Storage{
		inner:      inner,
		passphrase: passphrase,
		keys:       make(map[string][]byte),
	}, nil
}

// Get reads and decrypts the value stored under key.
// A wrong passphrase or tampered value is reported as a decryption error.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	sealedValue, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	encKey, err := s.encryptionKey(ctx, key, false)
	if err != nil {
		return nil, err
	}

	value, err := crypto.Open(sealedValue, encKey, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", key, err)
	}

	return value, nil
}

// Set encrypts value and stores it under key
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	encKey, err := s.encryptionKey(ctx, key, true)
	if err != nil {
		return err
	}

	sealedValue, err := crypto.Seal(value, encKey, []byte(key))
	if err != nil {
		return fmt.Errorf("failed to seal %q: %w", key, err)
	}

	return s.inner.Set(ctx, key, sealedValue)
}

// encryptionKey возвращает ключ для key, при необходимости создавая соль
func (s *Storage) encryptionKey(ctx context.Context, key string, create bool) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if k, ok := s.keys[key]; ok {
		return k, nil
	}

	salt, err := s.inner.Get(ctx, key+saltSuffix)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrKeyNotFound) && create:
		salt, err = crypto.GenerateSalt()
		if err != nil {
			return nil, err
		}
		if err := s.inner.Set(ctx, key+saltSuffix, salt); err != nil {
			return nil, fmt.Errorf("failed to store salt: %w", err)
		}
	case errors.Is(err, storage.ErrKeyNotFound):
		return nil, fmt.Errorf("salt for %q not found: value is not sealed", key)
	default:
		return nil, fmt.Errorf("failed to read salt: %w", err)
	}

	encKey, err := crypto.DeriveKey(s.passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	s.keys[key] = encKey
	return encKey, nil
}
