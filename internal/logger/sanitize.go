package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength is the maximum length for URL paths in logs
	MaxPathLength = 500
	// MaxSongIDLength is the maximum length for song ids in logs
	MaxSongIDLength = 128
	// MaxTagLength is the maximum length for a single vote tag in logs
	MaxTagLength = 128
	// MaxLoggedTags is the maximum number of tags logged per list
	MaxLoggedTags = 32
	// MaxErrorMessageLength is the maximum length for error messages in logs
	MaxErrorMessageLength = 1000
	// MaxGeneralStringLength is the maximum length for general strings in logs
	MaxGeneralStringLength = 2000
)

// SanitizePath sanitizes a URL path for safe logging
// Removes control characters, truncates to MaxPathLength, and validates UTF-8
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeString sanitizes a general string for safe logging
// Removes control characters, truncates to maxLength, and validates UTF-8
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}
	s = sanitizeFilterRunes(s)
	if len(s) > maxLength {
		s = strings.ToValidUTF8(s[:maxLength], "") + "..."
	}
	return s
}

// sanitizeFilterRunes validates UTF-8 and removes control characters (keeps printable, space, tab, newline, CR).
func sanitizeFilterRunes(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// SanitizeError sanitizes an error message for safe logging
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	errStr := err.Error()
	return SanitizeString(errStr, MaxErrorMessageLength)
}

// SanitizeSongID sanitizes a song id taken from a request path
func SanitizeSongID(id string) string {
	return SanitizeString(id, MaxSongIDLength)
}

// SanitizeTags sanitizes a list of vote tags, keeping at most MaxLoggedTags
func SanitizeTags(tags []string) []string {
	n := len(tags)
	if n > MaxLoggedTags {
		n = MaxLoggedTags
	}
	out := make([]string, 0, n)
	for _, tag := range tags[:n] {
		out = append(out, SanitizeString(tag, MaxTagLength))
	}
	return out
}
