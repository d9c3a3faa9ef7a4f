package input

import "sync"

// Snapshot holds the most recent Data received from the pad. The zero
// value is ready to use and reports Valid=false until the first Store.
type Snapshot struct {
	mu   sync.RWMutex
	data Data
}

func (s *Snapshot) Store(d Data) {
	s.mu.Lock()
	s.data = d
	s.mu.Unlock()
}

func (s *Snapshot) Load() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Invalidate clears the snapshot, e.g. after the pad went away.
func (s *Snapshot) Invalidate() {
	s.Store(Data{})
}
