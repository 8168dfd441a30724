package validation

import (
	"sync"

	"github.com/iudanet/accountkeeper/internal/notify"
)

// EventKind вид изменения кэша результатов
type EventKind int

const (
	// ResultSet результат для учетной записи сохранен или заменен
	ResultSet EventKind = iota
	// ResultRemoved результат удален
	ResultRemoved
	// ResultsCleared кэш очищен
	ResultsCleared
)

// Event сообщает подписчикам об изменении кэша
type Event struct {
	AccountID string // пусто для ResultsCleared
	Kind      EventKind
}

// Engine combines a Validator with a cache of per-account results keyed by account id.
// Engine never touches the account repository.
type Engine struct {
	*Validator
	results  map[string]AccountValidation
	observer notify.Hub[Event]
	mu       sync.RWMutex
}

// NewEngine creates an engine with an empty result cache
func NewEngine(rules Rules) *Engine {
	return &Engine{
		Validator: NewValidator(rules),
		results:   make(map[string]AccountValidation),
	}
}

// Subscribe registers fn to be called after every cache change
func (e *Engine) Subscribe(fn func(Event)) (unsubscribe func()) {
	return e.observer.Subscribe(fn)
}

// SetResult stores result for the account, replacing any previous one
func (e *Engine) SetResult(accountID string, result AccountValidation) {
	e.mu.Lock()
	e.results[accountID] = result
	e.mu.Unlock()

	e.observer.Notify(Event{Kind: ResultSet, AccountID: accountID})
}

// GetResult returns the stored result for the account
func (e *Engine) GetResult(accountID string) (AccountValidation, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result, ok := e.results[accountID]
	return result, ok
}

// Remove drops the stored result for the account; no-op if absent
func (e *Engine) Remove(accountID string) {
	e.mu.Lock()
	_, ok := e.results[accountID]
	delete(e.results, accountID)
	e.mu.Unlock()

	if ok {
		e.observer.Notify(Event{Kind: ResultRemoved, AccountID: accountID})
	}
}

// ClearAll drops every stored result
func (e *Engine) ClearAll() {
	e.mu.Lock()
	e.results = make(map[string]AccountValidation)
	e.mu.Unlock()

	e.observer.Notify(Event{Kind: ResultsCleared})
}

// All returns a copy of the cache
func (e *Engine) All() map[string]AccountValidation {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]AccountValidation, len(e.results))
	for id, result := range e.results {
		out[id] = result
	}
	return out
}
