package engine

import "sync"

// keyedMutex serializes writers per contact id. Entries are reference
// counted and removed once the last holder releases, so the map stays
// bounded by the number of contacts with in-flight writes.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*contactLock
}

type contactLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*contactLock)}
}

// lock acquires the mutex for key and returns its release func.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	cl, ok := k.locks[key]
	if !ok {
		cl = &contactLock{}
		k.locks[key] = cl
	}
	cl.refs++
	k.mu.Unlock()

	cl.mu.Lock()

	return func() {
		cl.mu.Unlock()

		k.mu.Lock()
		cl.refs--
		if cl.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
