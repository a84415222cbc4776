package audio

import (
	"fmt"
	"io"
	"sync"
)

type entry[V io.Closer] struct {
	value V
	refs  int
}

// Registry hands out one shared value per key and closes it when the last
// user releases it
type Registry[K comparable, V io.Closer] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
}

// NewRegistry creates an empty registry
func NewRegistry[K comparable, V io.Closer]() *Registry[K, V] {
	return &Registry[K, V]{entries: make(map[K]*entry[V])}
}

// Acquire returns the value for key, calling create if there is none yet.
// Every successful Acquire must be paired with a Release.
func (r *Registry[K, V]) Acquire(key K, create func() (V, error)) (V, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[key]; ok {
		e.refs++
		return e.value, nil
	}

	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	r.entries[key] = &entry[V]{value: v, refs: 1}
	return v, nil
}

// Release drops one reference to key. The value is closed and forgotten
// when the count reaches zero.
func (r *Registry[K, V]) Release(key K) error {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("release of unknown registry key %v", key)
	}
	e.refs--
	if e.refs > 0 {
		r.mu.Unlock()
		return nil
	}
	delete(r.entries, key)
	r.mu.Unlock()

	return e.value.Close()
}

// Refs returns the number of live references to key
func (r *Registry[K, V]) Refs(key K) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[key]; ok {
		return e.refs
	}
	return 0
}
