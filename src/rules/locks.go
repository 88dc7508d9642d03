package rules

import "sync"

// entryLocks hands out one mutex per entry id so that at most one writer
// touches an entry at a time. Mutexes are dropped once nobody holds or waits
// on them.
type entryLocks struct {
	mu    sync.Mutex
	locks map[int64]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func newEntryLocks() *entryLocks {
	return &entryLocks{locks: make(map[int64]*entryLock)}
}

func (l *entryLocks) lock(id int64) func() {
	l.mu.Lock()
	el, ok := l.locks[id]
	if !ok {
		el = &entryLock{}
		l.locks[id] = el
	}
	el.refs++
	l.mu.Unlock()

	el.mu.Lock()
	return func() {
		el.mu.Unlock()
		l.mu.Lock()
		el.refs--
		if el.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
