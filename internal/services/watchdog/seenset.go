package watchdog

import (
	"sync"
	"time"
)

// SeenSet is the record of fingerprints already alerted on. It grows without
// bound during normal operation (accepted tradeoff, matching the upstream
// design) and is emptied only by an explicit Clear.
//
// CheckAndMark is the correctness-critical primitive: the test and the insert
// happen under one lock acquisition, so two concurrent callers can never both
// observe the same fingerprint as new.
type SeenSet struct {
	mu   sync.Mutex
	seen map[Fingerprint]time.Time
}

// NewSeenSet creates an empty seen-set
func NewSeenSet() *SeenSet {
	return &SeenSet{
		seen: make(map[Fingerprint]time.Time),
	}
}

// CheckAndMark atomically tests whether fp is present; if absent it is
// inserted with the current time and true ("new") is returned, otherwise
// false ("duplicate").
func (s *SeenSet) CheckAndMark(fp Fingerprint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[fp]; ok {
		return false
	}
	s.seen[fp] = time.Now()
	return true
}

// FirstSeen returns when fp was first marked, if it is present
func (s *SeenSet) FirstSeen(fp Fingerprint) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.seen[fp]
	return t, ok
}

// Clear atomically empties the set and returns the number of fingerprints
// removed. Concurrent CheckAndMark calls observe either the pre-clear or the
// post-clear state, never a partial one.
func (s *SeenSet) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.seen)
	s.seen = make(map[Fingerprint]time.Time)
	return n
}

// Size returns the current number of tracked fingerprints
func (s *SeenSet) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
