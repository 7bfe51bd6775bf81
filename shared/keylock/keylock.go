// Package keylock provides named mutexes. The booking service locks on the
// room id so that the availability check and the insert behind it run as one
// unit per room, while different rooms proceed concurrently.
package keylock

import "sync"

type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *KeyLock {
	return &KeyLock{
		locks: map[string]*entry{},
	}
}

// Lock acquires the mutex for the given key, creating it on first use.
func (k *KeyLock) Lock(key string) {
	k.mu.Lock()

	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}

	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for the given key. Entries with no waiters are
// removed so the map does not grow with the number of keys ever seen.
func (k *KeyLock) Unlock(key string) {
	k.mu.Lock()

	e, ok := k.locks[key]
	if !ok {
		k.mu.Unlock()

		panic("keylock: unlock of unheld key " + key)
	}

	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}

	k.mu.Unlock()

	e.mu.Unlock()
}
