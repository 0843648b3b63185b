package watchdog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogFingerprint_Deterministic(t *testing.T) {
	a := LogFingerprint("svc-1", "failed at #:#: connection to #.#.#.# refused")
	b := LogFingerprint("svc-1", "failed at #:#: connection to #.#.#.# refused")
	assert.Equal(t, a, b)
	assert.Len(t, string(a), 32)
}

func TestLogFingerprint_DistinctServices(t *testing.T) {
	a := LogFingerprint("svc-1", "connection refused")
	b := LogFingerprint("svc-2", "connection refused")
	assert.NotEqual(t, a, b)
}

func TestLogFingerprint_FieldBoundaries(t *testing.T) {
	// Length-prefixed hashing: shifting bytes across the field boundary
	// must change the digest.
	a := LogFingerprint("ab", "c")
	b := LogFingerprint("a", "bc")
	assert.NotEqual(t, a, b)
}

func TestCrashFingerprint_DisjointFromLogNamespace(t *testing.T) {
	crash := CrashFingerprint("svc-1")
	log := LogFingerprint("svc-1", "")
	assert.NotEqual(t, crash, log)

	// A crash fingerprint is stable per service.
	assert.Equal(t, crash, CrashFingerprint("svc-1"))
	assert.NotEqual(t, crash, CrashFingerprint("svc-2"))
}
