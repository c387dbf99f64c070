package util

import (
	"bytes"
	"encoding/json"
	"strings"
)

var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"passwordhash":  {},
	"password_hash": {},
}

// IsSensitiveKey reports whether a JSON object key must never be sent to a
// client. Matching is case-insensitive.
func IsSensitiveKey(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// RedactJSON removes sensitive keys at any depth of a JSON document. The
// second result is false when body is not valid JSON; body is then returned
// unchanged. Documents without sensitive keys are returned byte-for-byte.
func RedactJSON(body []byte) ([]byte, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return body, true
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return body, false
	}

	if !stripSensitive(doc) {
		return body, true
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return body, false
	}
	return append(out, '\n'), true
}

func stripSensitive(value any) bool {
	changed := false

	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			if IsSensitiveKey(key) {
				delete(v, key)
				changed = true
				continue
			}
			if stripSensitive(child) {
				changed = true
			}
		}
	case []any:
		for _, child := range v {
			if stripSensitive(child) {
				changed = true
			}
		}
	}

	return changed
}
