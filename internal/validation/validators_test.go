package validation

import (
	"errors"
	"strings"
	"testing"
)

type taggedRequest struct {
	Moods []string `validate:"max=2,dive,max=5,poll_tag"`
}

func TestIsCleanTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag  string
		want bool
	}{
		{"happy", true},
		{"late night", true},
		{"", true},
		{"bad\x00tag", false},
		{"new\nline", false},
		{string([]byte{0xff, 0xfe}), false},
	}
	for _, tt := range tests {
		if got := IsCleanTag(tt.tag); got != tt.want {
			t.Errorf("IsCleanTag(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     taggedRequest
		wantMsg string
	}{
		{
			name:    "too many tags",
			req:     taggedRequest{Moods: []string{"a", "b", "c"}},
			wantMsg: "moods must contain at most 2 tags",
		},
		{
			name:    "tag too long",
			req:     taggedRequest{Moods: []string{"toolong"}},
			wantMsg: "moods[0] must be at most 5 characters",
		},
		{
			name:    "control character",
			req:     taggedRequest{Moods: []string{"a\tb"}},
			wantMsg: "moods[0] contains invalid characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate.Struct(tt.req)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if got := Describe(err); !strings.Contains(got, tt.wantMsg) {
				t.Errorf("Describe() = %q, want it to contain %q", got, tt.wantMsg)
			}
		})
	}
}

func TestDescribe_PlainError(t *testing.T) {
	t.Parallel()

	if got := Describe(errors.New("boom")); got != "boom" {
		t.Errorf("Describe() = %q, want %q", got, "boom")
	}
}

func TestValidate_AcceptsCleanRequest(t *testing.T) {
	t.Parallel()

	if err := Validate.Struct(taggedRequest{Moods: []string{"happy", "calm"}}); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}
}
