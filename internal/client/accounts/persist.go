package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/accountkeeper/internal/client/storage"
	"github.com/iudanet/accountkeeper/internal/models"
)

// ErrMalformedPayload indicates that the stored collection could not be decoded
var ErrMalformedPayload = errors.New("malformed accounts payload")

// Persist writes the whole collection to the store.
// A store failure is logged and kept in LastError; it is not returned.
func (r *Repository) Persist(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.persistLocked(ctx)
}

func (r *Repository) persistLocked(ctx context.Context) {
	data, err := Encode(r.accounts)
	if err == nil {
		err = r.store.Set(ctx, r.key, data)
	}

	if err != nil {
		r.lastErr = fmt.Errorf("persist accounts: %w", err)
		r.logger.Error("failed to persist accounts", "error", err, "accounts", len(r.accounts))
		return
	}

	r.lastErr = nil
}

// Restore replaces the collection with the one read from the store.
// On any failure, including a missing key, the collection becomes empty.
func (r *Repository) Restore(ctx context.Context) {
	r.mu.Lock()

	data, err := r.store.Get(ctx, r.key)
	var restored []*models.Account
	if err == nil {
		restored, err = Decode(data)
	}

	switch {
	case err == nil:
		r.accounts = restored
		r.lastErr = nil
		r.logger.Debug("accounts restored", "accounts", len(restored))
	case errors.Is(err, storage.ErrKeyNotFound):
		// Первый запуск: хранилище еще пустое
		r.accounts = []*models.Account{}
		r.lastErr = nil
		r.logger.Debug("no stored accounts", "key", r.key)
	default:
		r.accounts = []*models.Account{}
		r.lastErr = fmt.Errorf("restore accounts: %w", err)
		r.logger.Error("failed to restore accounts", "error", err)
	}

	r.mu.Unlock()

	r.observer.Notify(Event{Kind: Restored})
}

// Encode serializes accounts to the stored JSON form.
// An empty collection is encoded as "[]".
func Encode(accounts []*models.Account) ([]byte, error) {
	if accounts == nil {
		accounts = []*models.Account{}
	}

	data, err := json.Marshal(accounts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal accounts: %w", err)
	}
	return data, nil
}

// Decode parses the stored JSON form. Either the whole payload is accepted
// or an error wrapping ErrMalformedPayload is returned.
func Decode(data []byte) ([]*models.Account, error) {
	var decoded []*models.Account
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	accounts := make([]*models.Account, 0, len(decoded))
	seen := make(map[string]struct{}, len(decoded))

	for i, a := range decoded {
		if a == nil {
			return nil, fmt.Errorf("%w: record %d is null", ErrMalformedPayload, i)
		}
		if a.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrMalformedPayload, i)
		}
		if _, dup := seen[a.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrMalformedPayload, a.ID)
		}
		if !a.Type.Valid() {
			return nil, fmt.Errorf("%w: record %q has unknown type %q", ErrMalformedPayload, a.ID, a.Type)
		}
		seen[a.ID] = struct{}{}

		if a.Labels == nil {
			a.Labels = []models.Label{}
		}
		// Запись каталога не может хранить пароль
		if a.Type == models.AccountTypeDirectory {
			a.Password = nil
		}

		accounts = append(accounts, a)
	}

	return accounts, nil
}
