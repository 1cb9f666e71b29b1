package hunt

import "sync"

// addressLocks serializes session mutations per phone number so interleaved
// commands from the same player cannot lose updates. Entries are never
// evicted; the player population of a hunt is small and bounded.
type addressLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newAddressLocks() *addressLocks {
	return &addressLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for addr and returns its unlock function.
func (l *addressLocks) lock(addr string) func() {
	l.mu.Lock()
	m, ok := l.locks[addr]
	if !ok {
		m = &sync.Mutex{}
		l.locks[addr] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
