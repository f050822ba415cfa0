package chain

import "sync"

// Locker serializes writers to the same bill's chain (§5: "a bill-id-keyed
// mutex serializes writers to the same chain"). One Locker is shared process
// wide; readers do not need to take the lock.
type Locker struct {
	mu    sync.Mutex
	locks map[BillID]*sync.Mutex
}

// NewLocker returns an empty Locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[BillID]*sync.Mutex)}
}

// Lock acquires the per-bill mutex for id, creating it on first use.
func (l *Locker) Lock(id BillID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
