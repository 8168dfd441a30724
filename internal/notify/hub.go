// Package notify provides a minimal synchronous observer list.
package notify

import "sync"

// Hub хранит подписчиков на события типа E.
// Подписчики вызываются синхронно в порядке подписки.
type Hub[E any] struct {
	observers map[uint64]func(E)
	order     []uint64
	next      uint64
	mu        sync.Mutex
}

// Subscribe registers fn and returns a function that removes it.
// The returned function is safe to call more than once. A nil fn is ignored.
func (h *Hub[E]) Subscribe(fn func(E)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.observers == nil {
		h.observers = make(map[uint64]func(E))
	}

	id := h.next
	h.next++
	h.observers[id] = fn
	h.order = append(h.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub[E]) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.observers, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Notify calls every subscriber with event.
// Must not be called while holding the owner's state lock: observers may read state back.
func (h *Hub[E]) Notify(event E) {
	h.mu.Lock()
	fns := make([]func(E), 0, len(h.order))
	for _, id := range h.order {
		fns = append(fns, h.observers[id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

// Len returns the number of subscribers
func (h *Hub[E]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order)
}
