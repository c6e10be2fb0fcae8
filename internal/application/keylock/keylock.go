// Package keylock serializes mutations per entity key. The coordinator
// is driven by one inbound event stream per participant, but transports
// may deliver events concurrently, so every mutating operation locks the
// key of the entity it touches (order id, participant id, requester id)
// before reading state.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex provides independent mutexes addressed by string key.
// Unused keys hold no memory.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// New creates a new KeyedMutex
func New() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*entry)}
}

// Lock acquires the mutex for the given key and returns its unlock
// function.
func (m *KeyedMutex) Lock(key string) func() {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		m.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
	}
}
