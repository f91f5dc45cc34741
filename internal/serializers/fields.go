// Package serializers converts entities to their wire representation and
// validates client input. Input types carry only client-writable fields;
// server-assigned fields such as author, user and post are never read from
// a request body.
package serializers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

const (
	msgRequired  = "This field is required."
	msgNull      = "This field may not be null."
	msgBlank     = "This field may not be blank."
	msgNotString = "Not a valid string."
)

// ValidationError maps field names to their messages.
type ValidationError map[string][]string

func (v ValidationError) Add(field, msg string) {
	v[field] = append(v[field], msg)
}

func (v ValidationError) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(v[field], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns v as an error, or nil when no field failed.
func (v ValidationError) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// ParseError means the body was not a JSON object.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "JSON parse error - " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// object is a decoded JSON object whose members are decoded field by field
// so that every problem is attributed to the field that caused it.
type object map[string]json.RawMessage

func decodeObject(body io.Reader) (object, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("serializers: read body: %w", err)
	}
	obj := object{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return obj, nil
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ParseError{Err: errors.New("expected a JSON object")}
		}
		return nil, &ParseError{Err: err}
	}
	return obj, nil
}

func (o object) isNull(field string) bool {
	return bytes.Equal(bytes.TrimSpace(o[field]), []byte("null"))
}

// text reads a trimmed, non-blank string. It returns nil when the field is
// absent or invalid; problems are recorded in errs.
func (o object) text(field string, required bool, errs ValidationError) *string {
	raw, present := o[field]
	if !present {
		if required {
			errs.Add(field, msgRequired)
		}
		return nil
	}
	if o.isNull(field) {
		errs.Add(field, msgNull)
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		errs.Add(field, msgNotString)
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		errs.Add(field, msgBlank)
		return nil
	}
	return &s
}
