package service

import "sync"

// ownerLocks serializes order-mutating gallery operations per owner.
// Concurrent uploads, deletes, and reorders for the same owner would
// otherwise race between reading the current order set and writing the
// new one. Locks are small and per-user, so entries are kept for the
// lifetime of the process.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[int64]*sync.Mutex)}
}

// lock acquires the mutex for the given owner and returns its unlock func.
func (l *ownerLocks) lock(ownerID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[ownerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[ownerID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
