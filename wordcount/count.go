package wordcount

import "unicode"

// Limit is the visible-character budget of one file. Files above it are
// reported as too long and split into parts of roughly this size.
const Limit = 4000

// CountChars counts the runes that are not whitespace. For Chinese prose one
// character is roughly one word, so this stands in for a word count. Wide and
// narrow runes count the same.
func CountChars(s string) int {
	n := 0
	for _, r := range s {
		if !isBlank(r) {
			n++
		}
	}
	return n
}

// isBlank also treats the ASCII information separators as space so counts
// match those produced by the earlier tooling.
func isBlank(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
