package poll

import (
	"bytes"
	"encoding/json"

	"github.com/benvon/mood-poll/internal/validation"
)

// Strict ballot bounds, applied only when a State is built WithStrictBallots
const (
	MaxTagsPerList = 256
	MaxTagLength   = 128
)

// notArraysMessage matches the message clients have always received for bad lists
const notArraysMessage = "moods and paces must be arrays"

// Ballot is one vote: every listed tag gets one more count. Duplicates count twice.
type Ballot struct {
	Moods []string `json:"moods" validate:"max=256,dive,max=128,poll_tag"`
	Paces []string `json:"paces" validate:"max=256,dive,max=128,poll_tag"`
}

// Validate checks the strict bounds: list length, tag length and printable tags
func (b Ballot) Validate() error {
	if err := validation.Validate.Struct(b); err != nil {
		return &ValidationError{Message: validation.Describe(err)}
	}
	return nil
}

// Empty reports whether the ballot carries no tags
func (b Ballot) Empty() bool {
	return len(b.Moods) == 0 && len(b.Paces) == 0
}

// DecodeBallot parses a vote request body. Absent fields are empty lists; fields
// that are present but are not arrays of strings (null included) are rejected.
// An empty body is an empty ballot. Tag contents and list lengths are not bounded.
func DecodeBallot(data []byte) (Ballot, error) {
	var b Ballot

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return b, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return b, &ValidationError{Message: "request body must be a JSON object"}
	}

	var err error
	if b.Moods, err = decodeTagList("moods", fields["moods"]); err != nil {
		return Ballot{}, err
	}
	if b.Paces, err = decodeTagList("paces", fields["paces"]); err != nil {
		return Ballot{}, err
	}
	return b, nil
}

func decodeTagList(field string, raw json.RawMessage) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, &ValidationError{Field: field, Message: notArraysMessage}
	}

	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, &ValidationError{Field: field, Message: field + " must contain only strings"}
	}
	return tags, nil
}
