package correlation

import (
	"fmt"
	"sort"
	"sync"
)

// Store is the pending-command table owned by one channel. Every entry leaves
// the table exactly once, through Take or Drain.
type Store struct {
	mu      sync.Mutex
	pending map[string]*Pending
}

func NewStore() *Store {
	return &Store{pending: make(map[string]*Pending)}
}

// Register adds p; ids must be unique among outstanding entries.
func (s *Store) Register(p *Pending) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[p.ID]; ok {
		return fmt.Errorf("pending command %v already registered", p.ID)
	}
	s.pending[p.ID] = p
	return nil
}

// Take atomically removes the entry and stops its timer. The caller that gets
// ok == true owns the completion.
func (s *Store) Take(id string) (*Pending, bool) {
	s.mu.Lock()
	p, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	s.mu.Unlock()
	if ok {
		p.stopTimer()
	}
	return p, ok
}

// Drain removes every entry, ordered by send time.
func (s *Store) Drain() []*Pending {
	s.mu.Lock()
	out := make([]*Pending, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p)
	}
	s.pending = make(map[string]*Pending)
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	for _, p := range out {
		p.stopTimer()
	}
	return out
}

// Len returns the number of outstanding entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// IDs returns the outstanding ids, sorted.
func (s *Store) IDs() []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.pending))
	for id := range s.pending {
		out = append(out, id)
	}
	s.mu.Unlock()
	sort.Strings(out)
	return out
}
