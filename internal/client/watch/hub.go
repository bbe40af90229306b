// Package watch provides a latest-value hub: a holder of one value that any
// number of subscribers can observe as a stream.
//
// Every subscription starts with the current value and then receives each
// later value. Subscribers that fall behind are conflated: they skip
// intermediate values and see only the newest one, so a slow reader never
// blocks a writer.
package watch

import (
	"context"
	"sync"
)

// Hub holds a value of type T and fans its changes out to subscribers.
// The zero Hub is not usable; construct one with New or NewDistinct.
type Hub[T any] struct {
	mu    sync.Mutex
	value T
	subs  map[chan T]struct{}
	equal func(a, b T) bool
}

// New returns a hub that publishes every Set.
func New[T any](initial T) *Hub[T] {
	return &Hub[T]{value: initial, subs: make(map[chan T]struct{})}
}

// NewDistinct returns a hub that skips values equal to the current one.
func NewDistinct[T any](initial T, equal func(a, b T) bool) *Hub[T] {
	h := New(initial)
	h.equal = equal
	return h
}

// Get returns the current value.
func (h *Hub[T]) Get() T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value
}

// Set replaces the value and notifies subscribers.
func (h *Hub[T]) Set(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setLocked(v)
}

// Update applies fn to the current value atomically and publishes the
// result, which is also returned.
func (h *Hub[T]) Update(fn func(T) T) T {
	h.mu.Lock()
	defer h.mu.Unlock()
	v := fn(h.value)
	h.setLocked(v)
	return v
}

func (h *Hub[T]) setLocked(v T) {
	if h.equal != nil && h.equal(h.value, v) {
		return
	}
	h.value = v
	for ch := range h.subs {
		offer(ch, v)
	}
}

// offer delivers v, replacing an undelivered older value if needed.
// Callers hold h.mu, so ch has no concurrent sender.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

// Subscribe returns a stream that yields the current value immediately and
// every later one. The channel is closed once ctx is done.
func (h *Hub[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	h.mu.Lock()
	ch <- h.value
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

// Subscribers returns the number of live subscriptions.
func (h *Hub[T]) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
