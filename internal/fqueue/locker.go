// Package fqueue implements the durable per-path file queue: append-only
// length-prefixed streams on disk, serialized per path, readable forward-only
// with an explicit rewind.
package fqueue

import "sync"

// Locker hands out one mutex per file path so that concurrent writers and
// readers addressing the same path serialize while unrelated paths proceed
// independently. The registry lock guards only the map lookup/insert, never
// the I/O performed under a path's mutex.
//
// A Locker is process-scoped state owned by whoever constructs the Queue;
// entries are never evicted for the life of the process.
type Locker struct {
	mu    sync.Mutex
	paths map[string]*sync.Mutex
}

// NewLocker creates an empty lock registry.
func NewLocker() *Locker {
	return &Locker{paths: make(map[string]*sync.Mutex)}
}

// ForPath returns the mutex dedicated to path, creating it on first use.
func (l *Locker) ForPath(path string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.paths[path]
	if !ok {
		m = &sync.Mutex{}
		l.paths[path] = m
	}
	return m
}
