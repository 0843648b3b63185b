package watchdog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeenSet_CheckAndMark(t *testing.T) {
	s := NewSeenSet()
	fp := LogFingerprint("svc-1", "connection refused")

	assert.True(t, s.CheckAndMark(fp), "first sight is new")
	assert.False(t, s.CheckAndMark(fp), "second sight is a duplicate")
	assert.Equal(t, 1, s.Size())

	_, ok := s.FirstSeen(fp)
	assert.True(t, ok)
}

func TestSeenSet_Clear(t *testing.T) {
	s := NewSeenSet()
	s.CheckAndMark(LogFingerprint("svc-1", "a"))
	s.CheckAndMark(LogFingerprint("svc-1", "b"))
	s.CheckAndMark(CrashFingerprint("svc-2"))

	assert.Equal(t, 3, s.Clear())
	assert.Equal(t, 0, s.Size())

	// Cleared fingerprints count as new again.
	assert.True(t, s.CheckAndMark(LogFingerprint("svc-1", "a")))
	assert.Equal(t, 1, s.Size())
}

func TestSeenSet_ConcurrentCheckAndMark(t *testing.T) {
	s := NewSeenSet()
	fp := LogFingerprint("svc-1", "racy error")

	const goroutines = 32
	var wg sync.WaitGroup
	results := make(chan bool, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.CheckAndMark(fp)
		}()
	}
	wg.Wait()
	close(results)

	newCount := 0
	for isNew := range results {
		if isNew {
			newCount++
		}
	}
	assert.Equal(t, 1, newCount, "exactly one caller may observe the fingerprint as new")
	assert.Equal(t, 1, s.Size())
}
