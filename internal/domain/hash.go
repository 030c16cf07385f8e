package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// CanonicalText normalizes article text for hashing and comparison:
//   - converts CRLF/CR line endings to LF
//   - strips trailing whitespace from each line
//   - trims leading/trailing blank lines
//
// Paragraph structure is preserved, so two versions that differ only in
// line-ending style or trailing spaces hash identically.
func CanonicalText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.Trim(strings.Join(lines, "\n"), "\n \t")
}

// HashText returns the hex-encoded SHA-256 of the canonical form of text.
// Versions with equal HashText on the same effective date are duplicates.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(CanonicalText(text)))
	return hex.EncodeToString(sum[:])
}
