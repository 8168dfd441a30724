// Package accounts владеет коллекцией учетных записей и синхронизирует ее с хранилищем.
//
// Все операции изменения применяют бизнес-правила (разбор меток, связь типа и
// пароля) и сохраняют всю коллекцию целиком под одним ключом. Ошибки хранилища
// не возвращаются вызывающему: они логируются, а состояние в памяти остается
// источником истины.
package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/iudanet/accountkeeper/internal/client/storage"
	"github.com/iudanet/accountkeeper/internal/labels"
	"github.com/iudanet/accountkeeper/internal/models"
	"github.com/iudanet/accountkeeper/internal/notify"
)

// EventKind вид изменения коллекции
type EventKind int

const (
	Created EventKind = iota
	Updated
	Deleted
	Cleared
	Restored
)

func (k EventKind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	case Cleared:
		return "cleared"
	case Restored:
		return "restored"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event сообщает подписчикам об изменении коллекции.
// AccountID пуст для Cleared и Restored.
type Event struct {
	AccountID string
	Kind      EventKind
}

// Repository owns the account collection.
// Safe for concurrent use: lookup, mutation and serialization run under one mutex.
type Repository struct {
	store    storage.Store
	logger   *slog.Logger
	newID    func() string
	lastErr  error
	key      string
	accounts []*models.Account
	observer notify.Hub[Event]
	mu       sync.Mutex
}

// Option configures a Repository
type Option func(*Repository)

// WithLogger sets the logger for diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithKey sets the store key the collection is persisted under
func WithKey(key string) Option {
	return func(r *Repository) {
		if key != "" {
			r.key = key
		}
	}
}

// WithIDGenerator overrides account id generation
func WithIDGenerator(fn func() string) Option {
	return func(r *Repository) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// New creates an empty repository backed by store.
// Call Restore to load previously persisted accounts.
func New(store storage.Store, opts ...Option) *Repository {
	r := &Repository{
		store:    store,
		logger:   slog.Default(),
		newID:    NewID,
		key:      storage.DefaultKey,
		accounts: []*models.Account{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// NewID генерирует идентификатор из временной и случайной компонент (UUIDv7)
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Без источника времени остается только случайная компонента
		return uuid.NewString()
	}
	return id.String()
}

// Subscribe registers fn to be called after every change of the collection
func (r *Repository) Subscribe(fn func(Event)) (unsubscribe func()) {
	return r.observer.Subscribe(fn)
}

// Create appends a new LOCAL account with empty login and password and persists
func (r *Repository) Create(ctx context.Context) *models.Account {
	return r.CreateFrom(ctx, models.AccountPatch{})
}

// CreateFrom creates an account like Create and applies patch to it before
// the single write to the store, following the same rules as Update.
func (r *Repository) CreateFrom(ctx context.Context, patch models.AccountPatch) *models.Account {
	password := ""
	account := &models.Account{
		ID:       r.newID(),
		Labels:   []models.Label{},
		Type:     models.AccountTypeLocal,
		Login:    "",
		Password: &password,
	}
	r.applyPatch(account, patch)

	r.mu.Lock()
	r.accounts = append(r.accounts, account)
	r.persistLocked(ctx)
	created := account.Clone()
	r.mu.Unlock()

	r.logger.Debug("account created", "account_id", account.ID)
	r.observer.Notify(Event{Kind: Created, AccountID: account.ID})

	return created
}

// Update applies the supplied patch fields to the account with id.
// Fields are applied in order labels, type, login, password. Switching to
// AccountTypeDirectory clears the password even if the same patch carries
// one; a password is only stored while the account is LOCAL.
// Returns false if the account does not exist; nothing is changed then.
func (r *Repository) Update(ctx context.Context, id string, patch models.AccountPatch) bool {
	r.mu.Lock()

	account := r.findLocked(id)
	if account == nil {
		r.mu.Unlock()
		r.logger.Warn("account not found", "account_id", id)
		return false
	}

	r.applyPatch(account, patch)

	r.persistLocked(ctx)
	r.mu.Unlock()

	r.observer.Notify(Event{Kind: Updated, AccountID: id})
	return true
}

// Delete removes the account with id. Returns false if it did not exist;
// the store is only written when an account was removed.
func (r *Repository) Delete(ctx context.Context, id string) bool {
	r.mu.Lock()

	idx := r.indexLocked(id)
	if idx == -1 {
		r.mu.Unlock()
		return false
	}

	r.accounts = append(r.accounts[:idx], r.accounts[idx+1:]...)
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.logger.Debug("account deleted", "account_id", id)
	r.observer.Notify(Event{Kind: Deleted, AccountID: id})
	return true
}

// Clear removes every account and persists the empty collection
func (r *Repository) Clear(ctx context.Context) {
	r.mu.Lock()
	r.accounts = []*models.Account{}
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.observer.Notify(Event{Kind: Cleared})
}

// GetByID returns a copy of the account with id
func (r *Repository) GetByID(id string) (*models.Account, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account := r.findLocked(id)
	if account == nil {
		return nil, false
	}
	return account.Clone(), true
}

// List returns copies of all accounts in insertion order
func (r *Repository) List() []*models.Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a.Clone())
	}
	return out
}

// Count returns the number of accounts
func (r *Repository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts)
}

// HasAccounts reports whether the collection is non-empty
func (r *Repository) HasAccounts() bool {
	return r.Count() > 0
}

// LastError returns the last persist or restore failure that was absorbed,
// or nil if the last store operation succeeded.
func (r *Repository) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// applyPatch применяет поля patch в порядке labels, type, login, password
func (r *Repository) applyPatch(account *models.Account, patch models.AccountPatch) {
	if raw, ok := patch.Labels.Get(); ok {
		account.Labels = labels.Parse(raw)
	}

	if t, ok := patch.Type.Get(); ok {
		account.Type = t
		if t == models.AccountTypeDirectory {
			account.Password = nil
		}
	}

	if login, ok := patch.Login.Get(); ok {
		account.Login = login
	}

	if password, ok := patch.Password.Get(); ok {
		if account.Type == models.AccountTypeLocal {
			account.Password = &password
		} else {
			r.logger.Debug("password ignored for non-local account", "account_id", account.ID, "type", account.Type)
		}
	}
}

func (r *Repository) findLocked(id string) *models.Account {
	if idx := r.indexLocked(id); idx != -1 {
		return r.accounts[idx]
	}
	return nil
}

func (r *Repository) indexLocked(id string) int {
	for i, a := range r.accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}
