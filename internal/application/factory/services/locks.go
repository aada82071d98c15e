package services

import "sync"

// lockSet hands out one mutex per factory id. A factory's storage,
// production task and level form a single lock domain.
type lockSet struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockSet() *lockSet {
	return &lockSet{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for id and returns its release func
func (s *lockSet) lock(id string) func() {
	s.mu.Lock()
	m, ok := s.locks[id]
	if !ok {
		m = &sync.Mutex{}
		s.locks[id] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}
