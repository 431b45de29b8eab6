package frontier

import "sync"

// Set is a synchronized membership set keyed by normalized URL. One set
// tracks every URL enqueued for a session, a second tracks accepted
// articles; both live for the session only.
type Set struct {
	mu      sync.Mutex
	members map[string]struct{}
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{members: make(map[string]struct{})}
}

// Add inserts the key and reports whether it was absent. The
// check-and-insert is atomic, so concurrent workers racing on the same
// key see exactly one true result.
func (s *Set) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[key]; ok {
		return false
	}
	s.members[key] = struct{}{}
	return true
}

// Contains reports membership without inserting.
func (s *Set) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.members[key]
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.members)
}
