package testutil

import (
	"fmt"
	"sync"
)

// SequentialSessions generates "<prefix>-1", "<prefix>-2", ... as session ids.
//
// Unlike coordinator.FixedGenerator it never runs out, and it can be reset
// so the same scenario runs repeatedly with identical ids.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type SequentialSessions struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialSessions creates a generator. An empty prefix means "session".
func NewSequentialSessions(prefix string) *SequentialSessions {
	if prefix == "" {
		prefix = "session"
	}
	return &SequentialSessions{prefix: prefix}
}

// Generate returns the next id.
func (s *SequentialSessions) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}

// Reset restarts numbering at 1.
func (s *SequentialSessions) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = 0
}
