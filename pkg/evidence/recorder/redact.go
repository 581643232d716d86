package recorder

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// RedactedValue replaces answer values whose names are listed in the
// recorder's redaction configuration.
const RedactedValue = "[REDACTED]"

// RedactAnswers returns a copy of the answers map with the named fields
// replaced by RedactedValue. The original map is not modified.
//
// Redaction is by exact answer name. The record's AnswersHash is taken
// from the unredacted values, so a redacted record can still be matched
// against known inputs without exposing them.
func RedactAnswers(answers map[string]interface{}, redactNames []string) map[string]interface{} {
	if answers == nil {
		return nil
	}

	redacted := make(map[string]interface{}, len(answers))
	for name, value := range answers {
		redacted[name] = value
	}

	for _, name := range redactNames {
		if _, ok := redacted[name]; ok {
			redacted[name] = RedactedValue
		}
	}

	return redacted
}

// HashAnswers computes a SHA-256 hash over the answers in a
// canonical (name-sorted) JSON encoding, hex-encoded.
//
// Returns an empty string for empty answers.
func HashAnswers(answers map[string]interface{}) string {
	if len(answers) == 0 {
		return ""
	}

	names := make([]string, 0, len(answers))
	for name := range answers {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		value, _ := json.Marshal(answers[name])
		h.Write([]byte(name))
		h.Write([]byte{'='})
		h.Write(value)
		h.Write([]byte{';'})
	}

	return hex.EncodeToString(h.Sum(nil))
}

// TruncateString truncates a string to the specified maximum length.
// If the string is longer than maxLen, it is truncated and "..." is
// appended. Returns the original string if it fits.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}
