package accounts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/accountkeeper/internal/client/storage"
	"github.com/iudanet/accountkeeper/internal/models"
)

// mockStore - простой hand-written mock для storage.Store
type mockStore struct {
	setErr   error
	getErr   error
	values   map[string][]byte
	setCalls int
	mu       sync.Mutex
}

func newMockStore() *mockStore {
	return &mockStore{values: make(map[string][]byte)}
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	value, ok := m.values[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *mockStore) raw(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *mockStore) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setCalls
}

// newTestRepository создает репозиторий с предсказуемыми id и логом в буфер
func newTestRepository(t *testing.T, store storage.Store) (*Repository, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	n := 0
	repo := New(store,
		WithLogger(logger),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("acc-%d", n)
		}),
	)

	return repo, &logs
}

func strPtr(s string) *string {
	return &s
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	repo, _ := newTestRepository(t, store)

	account := repo.Create(ctx)

	assert.Equal(t, "acc-1", account.ID)
	assert.Equal(t, models.AccountTypeLocal, account.Type)
	assert.Equal(t, "", account.Login)
	require.NotNil(t, account.Password)
	assert.Equal(t, "", *account.Password)
	assert.Empty(t, account.Labels)

	assert.Equal(t, 1, repo.Count())
	assert.True(t, repo.HasAccounts())
	assert.JSONEq(t,
		`[{"id":"acc-1","labels":[],"type":"LOCAL","login":"","password":""}]`,
		string(store.raw(storage.DefaultKey)))
}

func TestRepository_Create_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t, newMockStore())

	account := repo.Create(ctx)
	account.Login = "mutated"
	account.Labels = append(account.Labels, models.Label{Text: "x"})

	stored, ok := repo.GetByID(account.ID)
	require.True(t, ok)
	assert.Equal(t, "", stored.Login)
	assert.Empty(t, stored.Labels)
}

func TestRepository_CreateFrom(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	repo, _ := newTestRepository(t, store)

	var events []Event
	repo.Subscribe(func(e Event) { events = append(events, e) })

	account := repo.CreateFrom(ctx, models.AccountPatch{
		Labels:   models.Some("work; vpn"),
		Type:     models.Some(models.AccountTypeDirectory),
		Login:    models.Some("bob"),
		Password: models.Some("ignored"),
	})

	assert.Equal(t, models.AccountTypeDirectory, account.Type)
	assert.Equal(t, "bob", account.Login)
	assert.Nil(t, account.Password)
	assert.Equal(t, []models.Label{{Text: "work"}, {Text: "vpn"}}, account.Labels)

	// Одна запись в хранилище и одно событие Created
	assert.Equal(t, 1, store.calls())
	assert.Equal(t, []Event{{Kind: Created, AccountID: account.ID}}, events)
	assert.JSONEq(t,
		`[{"id":"acc-1","labels":[{"text":"work"},{"text":"vpn"}],"type":"LDAP","login":"bob","password":null}]`,
		string(store.raw(storage.DefaultKey)))
}

func TestRepository_CreateFrom_PersistFailure(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	store.setErr = errors.New("disk full")
	repo, _ := newTestRepository(t, store)

	account := repo.CreateFrom(ctx, models.AccountPatch{Login: models.Some("alice")})

	assert.Equal(t, 1, store.calls())
	assert.Error(t, repo.LastError())
	stored, ok := repo.GetByID(account.ID)
	require.True(t, ok)
	assert.Equal(t, "alice", stored.Login)
}

func TestRepository_NewID_Unique(t *testing.T) {
	ctx := context.Background()
	repo := New(newMockStore())

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := repo.Create(ctx).ID
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestRepository_Update_Scenario(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t, newMockStore())

	id := repo.Create(ctx).ID

	require.True(t, repo.Update(ctx, id, models.AccountPatch{Login: models.Some("alice")}))

	got, ok := repo.GetByID(id)
	require.True(t, ok)
	assert.Equal(t, &models.Account{
		ID:       id,
		Labels:   []models.Label{},
		Type:     models.AccountTypeLocal,
		Login:    "alice",
		Password: strPtr(""),
	}, got)

	require.True(t, repo.Update(ctx, id, models.AccountPatch{
		Type:     models.Some(models.AccountTypeDirectory),
		Password: models.Some("x"),
	}))

	got, _ = repo.GetByID(id)
	assert.Equal(t, "alice", got.Login)
	assert.Equal(t, models.AccountTypeDirectory, got.Type)
	assert.Nil(t, got.Password)
}

func TestRepository_Update_Fields(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup []models.AccountPatch
		patch models.AccountPatch
		want  func(t *testing.T, a *models.Account)
	}{
		{
			name:  "labels are parsed",
			patch: models.AccountPatch{Labels: models.Some("a; b ;;c")},
			want: func(t *testing.T, a *models.Account) {
				assert.Equal(t, []models.Label{{Text: "a"}, {Text: "b"}, {Text: "c"}}, a.Labels)
			},
		},
		{
			name:  "empty labels string clears labels",
			setup: []models.AccountPatch{{Labels: models.Some("x;y")}},
			patch: models.AccountPatch{Labels: models.Some("")},
			want: func(t *testing.T, a *models.Account) {
				assert.Empty(t, a.Labels)
			},
		},
		{
			name:  "login stored verbatim",
			patch: models.AccountPatch{Login: models.Some("  alice  ")},
			want: func(t *testing.T, a *models.Account) {
				assert.Equal(t, "  alice  ", a.Login)
			},
		},
		{
			name:  "password stored for local account",
			patch: models.AccountPatch{Password: models.Some(" secret ")},
			want: func(t *testing.T, a *models.Account) {
				require.NotNil(t, a.Password)
				assert.Equal(t, " secret ", *a.Password)
			},
		},
		{
			name:  "password ignored for directory account",
			setup: []models.AccountPatch{{Type: models.Some(models.AccountTypeDirectory)}},
			patch: models.AccountPatch{Password: models.Some("secret")},
			want: func(t *testing.T, a *models.Account) {
				assert.Nil(t, a.Password)
			},
		},
		{
			name:  "switching back to local accepts password in same patch",
			setup: []models.AccountPatch{{Type: models.Some(models.AccountTypeDirectory)}},
			patch: models.AccountPatch{
				Type:     models.Some(models.AccountTypeLocal),
				Password: models.Some("back"),
			},
			want: func(t *testing.T, a *models.Account) {
				assert.Equal(t, models.AccountTypeLocal, a.Type)
				require.NotNil(t, a.Password)
				assert.Equal(t, "back", *a.Password)
			},
		},
		{
			name:  "switching back to local without password keeps nil",
			setup: []models.AccountPatch{{Type: models.Some(models.AccountTypeDirectory)}},
			patch: models.AccountPatch{Type: models.Some(models.AccountTypeLocal)},
			want: func(t *testing.T, a *models.Account) {
				assert.Equal(t, models.AccountTypeLocal, a.Type)
				assert.Nil(t, a.Password)
			},
		},
		{
			name: "not supplied fields stay untouched",
			setup: []models.AccountPatch{{
				Labels:   models.Some("keep"),
				Login:    models.Some("bob"),
				Password: models.Some("pw"),
			}},
			patch: models.AccountPatch{Login: models.Some("carol")},
			want: func(t *testing.T, a *models.Account) {
				assert.Equal(t, []models.Label{{Text: "keep"}}, a.Labels)
				assert.Equal(t, "carol", a.Login)
				require.NotNil(t, a.Password)
				assert.Equal(t, "pw", *a.Password)
				assert.Equal(t, models.AccountTypeLocal, a.Type)
			},
		},
		{
			name:  "explicit empty login is applied",
			setup: []models.AccountPatch{{Login: models.Some("bob")}},
			patch: models.AccountPatch{Login: models.Some("")},
			want: func(t *testing.T, a *models.Account) {
				assert.Equal(t, "", a.Login)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := newTestRepository(t, newMockStore())
			id := repo.Create(ctx).ID

			for _, p := range tt.setup {
				require.True(t, repo.Update(ctx, id, p))
			}
			require.True(t, repo.Update(ctx, id, tt.patch))

			got, ok := repo.GetByID(id)
			require.True(t, ok)
			tt.want(t, got)
		})
	}
}

func TestRepository_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	repo, logs := newTestRepository(t, store)

	repo.Create(ctx)
	require.True(t, repo.Update(ctx, "acc-1", models.AccountPatch{Labels: models.Some("a;b")}))

	before := append([]byte(nil), store.raw(storage.DefaultKey)...)
	callsBefore := store.calls()

	applied := repo.Update(ctx, "missing", models.AccountPatch{
		Login:    models.Some("x"),
		Type:     models.Some(models.AccountTypeDirectory),
		Password: models.Some("y"),
	})

	assert.False(t, applied)
	assert.Equal(t, callsBefore, store.calls(), "store must not be written")

	after, err := Encode(repo.List())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Contains(t, logs.String(), "account not found")
	assert.Contains(t, logs.String(), "account_id=missing")
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	repo, _ := newTestRepository(t, store)

	first := repo.Create(ctx).ID
	second := repo.Create(ctx).ID
	third := repo.Create(ctx).ID

	assert.True(t, repo.Delete(ctx, second))

	_, ok := repo.GetByID(second)
	assert.False(t, ok)

	list := repo.List()
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0].ID)
	assert.Equal(t, third, list[1].ID)

	callsBefore := store.calls()
	assert.False(t, repo.Delete(ctx, second))
	assert.False(t, repo.Delete(ctx, "never-existed"))
	assert.Equal(t, callsBefore, store.calls(), "no-op delete must not persist")
	assert.Equal(t, 2, repo.Count())
}

func TestRepository_Clear(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	repo, _ := newTestRepository(t, store)

	repo.Create(ctx)
	repo.Create(ctx)
	repo.Clear(ctx)

	assert.Equal(t, 0, repo.Count())
	assert.False(t, repo.HasAccounts())
	assert.Equal(t, "[]", string(store.raw(storage.DefaultKey)))
}

func TestRepository_UpdateKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t, newMockStore())

	ids := []string{repo.Create(ctx).ID, repo.Create(ctx).ID, repo.Create(ctx).ID}
	repo.Update(ctx, ids[0], models.AccountPatch{Login: models.Some("first")})

	list := repo.List()
	for i, a := range list {
		assert.Equal(t, ids[i], a.ID)
	}
}

func TestRepository_PersistFailure(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	store.setErr = errors.New("disk full")
	repo, logs := newTestRepository(t, store)

	account := repo.Create(ctx)

	// Состояние в памяти остается источником истины
	got, ok := repo.GetByID(account.ID)
	require.True(t, ok)
	assert.Equal(t, account, got)
	assert.ErrorContains(t, repo.LastError(), "disk full")
	assert.Contains(t, logs.String(), "failed to persist accounts")

	assert.True(t, repo.Update(ctx, account.ID, models.AccountPatch{Login: models.Some("alice")}))
	got, _ = repo.GetByID(account.ID)
	assert.Equal(t, "alice", got.Login)

	// Следующая мутация после восстановления хранилища сохраняет все
	store.setErr = nil
	repo.Update(ctx, account.ID, models.AccountPatch{Labels: models.Some("ok")})
	assert.NoError(t, repo.LastError())

	restored, _ := newTestRepository(t, store)
	restored.Restore(ctx)
	assert.Equal(t, repo.List(), restored.List())
}

func TestRepository_PersistRestore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	repo, _ := newTestRepository(t, store)

	local := repo.Create(ctx).ID
	repo.Update(ctx, local, models.AccountPatch{
		Labels:   models.Some("work;vpn;work"),
		Login:    models.Some("alice"),
		Password: models.Some("secret"),
	})
	dir := repo.Create(ctx).ID
	repo.Update(ctx, dir, models.AccountPatch{
		Type:  models.Some(models.AccountTypeDirectory),
		Login: models.Some("CORP\\bob"),
	})

	restored, _ := newTestRepository(t, store)
	restored.Restore(ctx)

	assert.NoError(t, restored.LastError())
	assert.Equal(t, repo.List(), restored.List())
	assert.JSONEq(t, `[
		{"id":"acc-1","labels":[{"text":"work"},{"text":"vpn"},{"text":"work"}],"type":"LOCAL","login":"alice","password":"secret"},
		{"id":"acc-2","labels":[],"type":"LDAP","login":"CORP\\bob","password":null}
	]`, string(store.raw(storage.DefaultKey)))
}

func TestRepository_Restore_Failures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
		getErr  error
		wantErr bool
	}{
		{name: "not json", payload: `{{{not json`, wantErr: true},
		{name: "truncated", payload: `[{"id":"a","labels":[],"type":"LOCAL","login":"x","password":""},{"id":"b"`, wantErr: true},
		{name: "object instead of array", payload: `{"id":"a"}`, wantErr: true},
		{name: "wrong field type", payload: `[{"id":"a","labels":"oops","type":"LOCAL","login":"","password":""}]`, wantErr: true},
		{name: "missing id", payload: `[{"labels":[],"type":"LOCAL","login":"","password":""}]`, wantErr: true},
		{name: "unknown type", payload: `[{"id":"a","labels":[],"type":"SSO","login":"","password":""}]`, wantErr: true},
		{name: "duplicate id", payload: `[{"id":"a","type":"LOCAL"},{"id":"a","type":"LOCAL"}]`, wantErr: true},
		{name: "null record", payload: `[null]`, wantErr: true},
		{name: "read failure", getErr: errors.New("io error"), wantErr: true},
		{name: "json null", payload: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			repo, logs := newTestRepository(t, store)
			// В памяти уже есть записи: после неудачного restore их быть не должно
			repo.Create(ctx)

			store.getErr = tt.getErr
			store.values[storage.DefaultKey] = []byte(tt.payload)

			assert.NotPanics(t, func() { repo.Restore(ctx) })
			assert.Equal(t, 0, repo.Count())
			assert.Empty(t, repo.List())

			if tt.wantErr {
				assert.Error(t, repo.LastError())
				assert.Contains(t, logs.String(), "failed to restore accounts")
			} else {
				assert.NoError(t, repo.LastError())
			}
		})
	}
}

func TestRepository_Restore_MissingKey(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t, newMockStore())
	repo.Create(ctx)

	// Create сохранил коллекцию; читаем из другого (пустого) хранилища
	fresh, _ := newTestRepository(t, newMockStore())
	fresh.Restore(ctx)

	assert.Equal(t, 0, fresh.Count())
	assert.NoError(t, fresh.LastError())
}

func TestRepository_Restore_NormalizesDirectoryPassword(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	store.values[storage.DefaultKey] = []byte(`[{"id":"a","type":"LDAP","login":"bob","password":"leaked"}]`)

	repo, _ := newTestRepository(t, store)
	repo.Restore(ctx)

	got, ok := repo.GetByID("a")
	require.True(t, ok)
	assert.Nil(t, got.Password)
	assert.NotNil(t, got.Labels)
}

func TestRepository_Observers(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t, newMockStore())

	var events []Event
	unsubscribe := repo.Subscribe(func(e Event) {
		// Наблюдатель может читать состояние репозитория
		_ = repo.Count()
		events = append(events, e)
	})

	id := repo.Create(ctx).ID
	repo.Update(ctx, id, models.AccountPatch{Login: models.Some("alice")})
	repo.Update(ctx, "missing", models.AccountPatch{Login: models.Some("x")})
	repo.Delete(ctx, id)
	repo.Delete(ctx, id)
	repo.Clear(ctx)
	repo.Restore(ctx)

	assert.Equal(t, []Event{
		{Kind: Created, AccountID: id},
		{Kind: Updated, AccountID: id},
		{Kind: Deleted, AccountID: id},
		{Kind: Cleared},
		{Kind: Restored},
	}, events)

	unsubscribe()
	repo.Create(ctx)
	assert.Len(t, events, 5)
}

func TestRepository_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	repo := New(store, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := repo.Create(ctx).ID
			repo.Update(ctx, id, models.AccountPatch{Login: models.Some(fmt.Sprintf("user%d", i))})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, repo.Count())

	decoded, err := Decode(store.raw(storage.DefaultKey))
	require.NoError(t, err)
	assert.Len(t, decoded, 20)
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "restored", Restored.String())
	assert.Equal(t, "EventKind(42)", EventKind(42).String())
}
