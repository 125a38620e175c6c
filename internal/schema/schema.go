// Package schema provides typed value schemas used to validate and encode
// operation parameters, request bodies, and results.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type describes a value schema. Implementations validate Go values and
// convert them to and from their JSON and query-string representations.
type Type interface {
	// Validate returns an error if v does not conform to the schema.
	Validate(v any) error

	// MarshalValue encodes a validated value to its wire representation.
	MarshalValue(v any) ([]byte, error)

	// UnmarshalValue decodes a wire representation into a Go value.
	UnmarshalValue(data []byte) (any, error)

	// DecodeString parses a query-string parameter into a Go value.
	DecodeString(s string) (any, error)

	// ContentType reports the media type produced by MarshalValue.
	ContentType() string
}

// Error describes a schema violation. Path names the offending property
// ("" for the root value).
type Error struct {
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func errorf(path, format string, args ...any) error {
	return &Error{Path: path, Message: fmt.Sprintf(format, args...)}
}

// String validates string values. Format "raw" marks strings that are
// written as plain text rather than JSON-quoted.
type String struct {
	Format    string
	MinLength int
	MaxLength int // 0 means unbounded
}

func (s *String) Validate(v any) error {
	str, ok := v.(string)
	if !ok {
		return errorf("", "expected string, got %T", v)
	}
	if len(str) < s.MinLength {
		return errorf("", "string shorter than %d", s.MinLength)
	}
	if s.MaxLength > 0 && len(str) > s.MaxLength {
		return errorf("", "string longer than %d", s.MaxLength)
	}
	return nil
}

func (s *String) MarshalValue(v any) ([]byte, error) {
	if err := s.Validate(v); err != nil {
		return nil, err
	}
	if s.Format == "raw" {
		return []byte(v.(string)), nil
	}
	return json.Marshal(v)
}

func (s *String) UnmarshalValue(data []byte) (any, error) {
	if s.Format == "raw" {
		return string(data), nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return nil, errorf("", "invalid JSON string: %v", err)
	}
	return str, nil
}

func (s *String) DecodeString(str string) (any, error) {
	if err := s.Validate(str); err != nil {
		return nil, err
	}
	return str, nil
}

func (s *String) ContentType() string {
	if s.Format == "raw" {
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Int validates int values. JSON numbers decode to int.
type Int struct {
	Min *int
	Max *int
}

func (i *Int) Validate(v any) error {
	n, ok := toInt(v)
	if !ok {
		return errorf("", "expected integer, got %T", v)
	}
	if i.Min != nil && n < *i.Min {
		return errorf("", "integer below minimum %d", *i.Min)
	}
	if i.Max != nil && n > *i.Max {
		return errorf("", "integer above maximum %d", *i.Max)
	}
	return nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

func (i *Int) MarshalValue(v any) ([]byte, error) {
	if err := i.Validate(v); err != nil {
		return nil, err
	}
	n, _ := toInt(v)
	return json.Marshal(n)
}

func (i *Int) UnmarshalValue(data []byte) (any, error) {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, errorf("", "invalid JSON integer: %v", err)
	}
	return n, nil
}

func (i *Int) DecodeString(s string) (any, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, errorf("", "invalid integer %q", s)
	}
	if err := i.Validate(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (i *Int) ContentType() string { return "application/json" }

// Bool validates boolean values. Query parameters accept true/false/1/0.
type Bool struct{}

func (b *Bool) Validate(v any) error {
	if _, ok := v.(bool); !ok {
		return errorf("", "expected boolean, got %T", v)
	}
	return nil
}

func (b *Bool) MarshalValue(v any) ([]byte, error) {
	if err := b.Validate(v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func (b *Bool) UnmarshalValue(data []byte) (any, error) {
	var bv bool
	if err := json.Unmarshal(data, &bv); err != nil {
		return nil, errorf("", "invalid JSON boolean: %v", err)
	}
	return bv, nil
}

func (b *Bool) DecodeString(s string) (any, error) {
	switch s {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return nil, errorf("", "invalid boolean %q", s)
}

func (b *Bool) ContentType() string { return "application/json" }

// DateTime validates time.Time values, encoded as RFC 3339 strings.
type DateTime struct{}

func (d *DateTime) Validate(v any) error {
	if _, ok := v.(time.Time); !ok {
		return errorf("", "expected time, got %T", v)
	}
	return nil
}

func (d *DateTime) MarshalValue(v any) ([]byte, error) {
	if err := d.Validate(v); err != nil {
		return nil, err
	}
	return json.Marshal(v.(time.Time).Format(time.RFC3339Nano))
}

func (d *DateTime) UnmarshalValue(data []byte) (any, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errorf("", "invalid JSON datetime: %v", err)
	}
	return d.DecodeString(s)
}

func (d *DateTime) DecodeString(s string) (any, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		return nil, errorf("", "invalid RFC 3339 datetime %q", s)
	}
	return t, nil
}

func (d *DateTime) ContentType() string { return "application/json" }

// UUID validates uuid.UUID values, encoded in canonical text form.
type UUID struct{}

func (u *UUID) Validate(v any) error {
	switch v.(type) {
	case uuid.UUID:
		return nil
	case string:
		if _, err := uuid.Parse(v.(string)); err != nil {
			return errorf("", "invalid UUID: %v", err)
		}
		return nil
	}
	return errorf("", "expected UUID, got %T", v)
}

func (u *UUID) MarshalValue(v any) ([]byte, error) {
	if err := u.Validate(v); err != nil {
		return nil, err
	}
	if id, ok := v.(uuid.UUID); ok {
		return json.Marshal(id.String())
	}
	return json.Marshal(v)
}

func (u *UUID) UnmarshalValue(data []byte) (any, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errorf("", "invalid JSON UUID: %v", err)
	}
	return u.DecodeString(s)
}

func (u *UUID) DecodeString(s string) (any, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, errorf("", "invalid UUID %q", s)
	}
	return id, nil
}

func (u *UUID) ContentType() string { return "application/json" }

// Reader passes request and response bodies through as opaque byte streams.
// Values are io.Reader; no validation beyond the type check is applied.
type Reader struct{}

func (r *Reader) Validate(v any) error {
	if _, ok := v.(io.Reader); !ok {
		return errorf("", "expected reader, got %T", v)
	}
	return nil
}

func (r *Reader) MarshalValue(v any) ([]byte, error) {
	rd, ok := v.(io.Reader)
	if !ok {
		return nil, errorf("", "expected reader, got %T", v)
	}
	return io.ReadAll(rd)
}

func (r *Reader) UnmarshalValue(data []byte) (any, error) {
	return bytes.NewReader(data), nil
}

func (r *Reader) DecodeString(s string) (any, error) {
	return strings.NewReader(s), nil
}

func (r *Reader) ContentType() string { return "application/octet-stream" }

// Dict validates JSON objects with named, individually-typed properties.
type Dict struct {
	Properties map[string]Type
	Required   []string
}

func (d *Dict) Validate(v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return errorf("", "expected object, got %T", v)
	}
	for _, name := range d.Required {
		if _, present := m[name]; !present {
			return errorf(name, "required property missing")
		}
	}
	for name, val := range m {
		prop, known := d.Properties[name]
		if !known {
			return errorf(name, "unknown property")
		}
		if err := prop.Validate(val); err != nil {
			var se *Error
			if e, ok := err.(*Error); ok {
				se = e
			} else {
				se = &Error{Message: err.Error()}
			}
			path := name
			if se.Path != "" {
				path = name + "." + se.Path
			}
			return &Error{Path: path, Message: se.Message}
		}
	}
	return nil
}

func (d *Dict) MarshalValue(v any) ([]byte, error) {
	if err := d.Validate(v); err != nil {
		return nil, err
	}
	m := v.(map[string]any)
	out := make(map[string]json.RawMessage, len(m))
	for name, val := range m {
		enc, err := d.Properties[name].MarshalValue(val)
		if err != nil {
			return nil, errorf(name, "%v", err)
		}
		out[name] = enc
	}
	return json.Marshal(out)
}

func (d *Dict) UnmarshalValue(data []byte) (any, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errorf("", "invalid JSON object: %v", err)
	}
	m := make(map[string]any, len(raw))
	for name, rv := range raw {
		prop, known := d.Properties[name]
		if !known {
			return nil, errorf(name, "unknown property")
		}
		val, err := prop.UnmarshalValue(rv)
		if err != nil {
			return nil, errorf(name, "%v", err)
		}
		m[name] = val
	}
	if err := d.Validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (d *Dict) DecodeString(s string) (any, error) {
	return d.UnmarshalValue([]byte(s))
}

func (d *Dict) ContentType() string { return "application/json" }
