package watchdog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "digit runs collapse to single hash",
			input:    "Failed at 14:32: connection to 10.0.0.5 refused",
			expected: "failed at #:#: connection to #.#.#.# refused",
		},
		{
			name:     "multi-digit run is one hash",
			input:    "retry 12345 exhausted",
			expected: "retry # exhausted",
		},
		{
			name:     "whitespace runs collapse to one space",
			input:    "error:\t  too many\n\nconnections",
			expected: "error: too many connections",
		},
		{
			name:     "leading and trailing whitespace trimmed",
			input:    "  panic: oh no  \n",
			expected: "panic: oh no",
		},
		{
			name:     "lowercased",
			input:    "ERROR Connection REFUSED",
			expected: "error connection refused",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    " \t\n ",
			expected: "",
		},
		{
			name:     "digits only",
			input:    "2024",
			expected: "#",
		},
		{
			name:     "digits separated by letters keep separate hashes",
			input:    "worker 3 of 10 died",
			expected: "worker # of # died",
		},
		{
			name:     "non-ascii preserved",
			input:    "Fehler: Verbindung über Port 8080 fehlgeschlagen",
			expected: "fehler: verbindung über port # fehlgeschlagen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_StableAcrossVolatileTokens(t *testing.T) {
	// Messages differing only in timestamps, addresses and counters must
	// normalize identically so they share a fingerprint.
	a := Normalize("Failed at 14:32: connection to 10.0.0.5 refused")
	b := Normalize("Failed at 09:01: connection to 192.168.1.77 refused")
	assert.Equal(t, a, b)
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Failed at 14:32: connection to 10.0.0.5 refused",
		"  UPPER   case\t42  ",
		"",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once))
	}
}
