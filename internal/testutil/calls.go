package testutil

import (
	"fmt"
	"sync"
)

// CallLog records callback invocations in order.
//
// Thread-safety: safe for concurrent use; callbacks may fire on any goroutine.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

// Add records one invocation.
func (l *CallLog) Add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

// Addf records one invocation with a formatted name.
func (l *CallLog) Addf(format string, args ...any) {
	l.Add(fmt.Sprintf(format, args...))
}

// Func returns a func() that records name when called.
func (l *CallLog) Func(name string) func() {
	return func() { l.Add(name) }
}

// Calls returns every recorded invocation in order.
func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// Count returns how often name was recorded.
func (l *CallLog) Count(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		if c == name {
			n++
		}
	}
	return n
}

// Len returns the number of recorded invocations.
func (l *CallLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}
