package logger

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "empty", in: "", max: 10, want: ""},
		{name: "plain", in: "chill", max: 10, want: "chill"},
		{name: "control characters", in: "a\x00b\x1bc", max: 10, want: "abc"},
		{name: "invalid utf8", in: "ok\xffok", max: 10, want: "okok"},
		{name: "truncated", in: "abcdefghij", max: 4, want: "abcd..."},
		{name: "default max", in: "abc", max: 0, want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeString(tt.in, tt.max); got != tt.want {
				t.Errorf("SanitizeString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestSanitizeString_TruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	got := SanitizeString(strings.Repeat("é", 10), 5)
	if !utf8.ValidString(got) {
		t.Errorf("SanitizeString() produced invalid UTF-8: %q", got)
	}
}

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	long := "/" + strings.Repeat("a", MaxPathLength+10)
	if got := SanitizePath(long); len(got) != MaxPathLength+len("...") {
		t.Errorf("SanitizePath() length = %d, want %d", len(got), MaxPathLength+3)
	}
	if got := SanitizePath("/songs/a\nb/toggle"); got != "/songs/a\nb/toggle" {
		t.Errorf("SanitizePath() = %q", got)
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if got := SanitizeError(nil); got != "" {
		t.Errorf("SanitizeError(nil) = %q", got)
	}
	if got := SanitizeError(errors.New("bad\x07 thing")); got != "bad thing" {
		t.Errorf("SanitizeError() = %q", got)
	}
}

func TestSanitizeTags(t *testing.T) {
	t.Parallel()

	tags := make([]string, MaxLoggedTags+5)
	for i := range tags {
		tags[i] = "t\x01ag"
	}
	got := SanitizeTags(tags)
	if len(got) != MaxLoggedTags {
		t.Fatalf("SanitizeTags() kept %d tags, want %d", len(got), MaxLoggedTags)
	}
	if got[0] != "tag" {
		t.Errorf("SanitizeTags()[0] = %q, want tag", got[0])
	}
	if got := SanitizeTags(nil); len(got) != 0 {
		t.Errorf("SanitizeTags(nil) = %v", got)
	}
}

func TestSanitizeSongID(t *testing.T) {
	t.Parallel()

	if got := SanitizeSongID(strings.Repeat("x", MaxSongIDLength*2)); len(got) != MaxSongIDLength+3 {
		t.Errorf("SanitizeSongID() length = %d", len(got))
	}
}
