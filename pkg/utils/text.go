package utils

import (
	"strings"
	"unicode/utf8"
)

// Truncate returns s truncated to maxLen bytes, with "..." appended if
// truncated. If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// IsMostlyText reports whether data looks like text: valid UTF-8 (or a valid
// prefix of it) with no NUL bytes in the sample. Used to exclude binary files
// from chunking.
func IsMostlyText(data []byte) bool {
	sample := data
	if len(sample) > 8192 {
		sample = sample[:8192]
	}
	if len(sample) == 0 {
		return true
	}
	for _, b := range sample {
		if b == 0 {
			return false
		}
	}
	// A sample may end mid-rune; trim trailing bytes until it validates.
	for i := 0; i < 3 && len(sample) > 0; i++ {
		if utf8.Valid(sample) {
			return true
		}
		sample = sample[:len(sample)-1]
	}
	return utf8.Valid(sample)
}

// SanitizeMermaidID converts a path or module name into a Mermaid-safe node
// identifier: non-alphanumeric runes become underscores, capped at 60 chars.
func SanitizeMermaidID(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	id := b.String()
	if len(id) > 60 {
		id = id[:60]
	}
	return id
}
