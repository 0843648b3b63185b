package watchdog

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// Fingerprint is an opaque dedup key derived from a service identity and a
// normalized signal. Two log entries from the same service whose messages
// differ only in volatile tokens map to the same fingerprint.
type Fingerprint string

// Hash domain tags keep the crash namespace disjoint from the log-message
// namespace for the same service.
const (
	domainLogError = "log"
	domainCrash    = "crash"
)

// LogFingerprint returns the fingerprint for a normalized log message from
// the given service.
func LogFingerprint(serviceID, normalized string) Fingerprint {
	return fingerprint(domainLogError, serviceID, normalized)
}

// CrashFingerprint returns the synthetic fingerprint representing "service is
// in CRASHED state". Never collides with any log-message fingerprint.
func CrashFingerprint(serviceID string) Fingerprint {
	return fingerprint(domainCrash, serviceID, "")
}

// fingerprint hashes each field with a length prefix so field boundaries are
// unambiguous: ("ab","c") and ("a","bc") produce different digests.
func fingerprint(domain, serviceID, payload string) Fingerprint {
	h := sha256.New()
	writeField(h, domain)
	writeField(h, serviceID)
	writeField(h, payload)

	sum := h.Sum(nil)
	return Fingerprint(hex.EncodeToString(sum[:16]))
}

func writeField(h hash.Hash, field string) {
	var prefix [8]byte
	binary.BigEndian.PutUint64(prefix[:], uint64(len(field)))
	h.Write(prefix[:])
	h.Write([]byte(field))
}
