package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NormalizeTags trims each tag and drops the empty ones. Order and
// duplicates are preserved. The result is never nil.
func NormalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, tag := range in {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// DecodeTags validates a raw JSON tags payload. It returns nil when the field
// was absent or null, otherwise the normalized tags.
func DecodeTags(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, NewValidationError("tags must be provided as a list of strings")
	}

	tags := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, NewValidationError("each tag must be a string")
		}
		tags = append(tags, s)
	}
	return NormalizeTags(tags), nil
}
