package ledger

import "sync"

// keyMutex hands out one mutex per account so balance mutations for the same
// user serialize while unrelated users proceed in parallel.
type keyMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newKeyMutex() *keyMutex {
	return &keyMutex{locks: make(map[int64]*sync.Mutex)}
}

func (k *keyMutex) lock(userID int64) func() {
	k.mu.Lock()
	m, ok := k.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		k.locks[userID] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
