// ABOUTME: Value holds the typed payload of a daily entry.
// ABOUTME: Exactly one of boolean, number, text, or structured JSON.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValueKind identifies which variant a Value carries.
type ValueKind string

const (
	KindBool   ValueKind = "boolean"
	KindNumber ValueKind = "number"
	KindText   ValueKind = "text"
	KindJSON   ValueKind = "json"
)

// Value is a tagged union over the entry value domains.
// The zero Value is invalid; use the constructors.
type Value struct {
	kind ValueKind
	b    bool
	n    float64
	s    string
	raw  json.RawMessage
}

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// NumberValue returns a numeric Value.
func NumberValue(n float64) Value { return Value{kind: KindNumber, n: n} }

// TextValue returns a string Value.
func TextValue(s string) Value { return Value{kind: KindText, s: s} }

// JSONValue returns a structured Value from raw JSON.
func JSONValue(raw json.RawMessage) Value {
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return Value{kind: KindJSON, raw: cp}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsValid reports whether v was built by a constructor.
func (v Value) IsValid() bool { return v.kind != "" }

// Bool returns the boolean payload and whether v is a boolean.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Number returns the numeric payload and whether v is a number.
func (v Value) Number() (float64, bool) { return v.n, v.kind == KindNumber }

// Text returns the string payload and whether v is text.
func (v Value) Text() (string, bool) { return v.s, v.kind == KindText }

// JSON returns the structured payload and whether v is JSON.
func (v Value) JSON() (json.RawMessage, bool) { return v.raw, v.kind == KindJSON }

// Equal reports whether two values carry the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindText:
		return v.s == o.s
	case KindJSON:
		return bytes.Equal(v.raw, o.raw)
	}
	return true
}

// Interface returns the payload as a plain Go value.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindText:
		return v.s
	case KindJSON:
		var out any
		if err := json.Unmarshal(v.raw, &out); err != nil {
			return nil
		}
		return out
	}
	return nil
}

// MarshalJSON writes the payload as its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.n)
	case KindText:
		return json.Marshal(v.s)
	case KindJSON:
		if len(v.raw) == 0 {
			return []byte("null"), nil
		}
		return v.raw, nil
	}
	return []byte("null"), nil
}

// UnmarshalJSON infers the variant from the JSON token.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Value{}
		return nil
	}
	switch trimmed[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return fmt.Errorf("decode boolean value: %w", err)
		}
		*v = BoolValue(b)
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode text value: %w", err)
		}
		*v = TextValue(s)
	case '{', '[':
		*v = JSONValue(trimmed)
	default:
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("decode number value: %w", err)
		}
		*v = NumberValue(n)
	}
	return nil
}

// MarshalYAML emits the plain payload.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}
