package watchdog

import "strings"

// Normalize converts a raw log message into a dedup-stable form: every
// maximal run of decimal digits becomes a single '#', whitespace runs
// collapse to one space, and the result is trimmed and lower-cased so
// timestamps, ids and counters embedded in a message do not defeat
// deduplication. Total: any input, including empty, yields a valid result.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))

	inDigits := false
	inSpace := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			if !inDigits {
				b.WriteByte('#')
				inDigits = true
			}
			inSpace = false
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			inDigits = false
		default:
			b.WriteRune(r)
			inDigits = false
			inSpace = false
		}
	}

	return strings.ToLower(strings.TrimSpace(b.String()))
}
