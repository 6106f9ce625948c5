// Package model defines the document shape shared across the index,
// filter, and transport layers.
package model

import (
	"encoding/json"
	"strings"
)

// Document is a flexible JSON object. The only attribute the indexing
// subsystem requires is a string "_id" unique within its index; every
// other field is opaque to the core and depends entirely on what the
// client chooses to store and search.
type Document map[string]interface{}

// ID returns the document's "_id" attribute. It is a client error for a
// document submitted to Add/Update to lack one.
func (d Document) ID() (string, bool) {
	v, ok := d["_id"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// ExtractText concatenates the string content of the named top-level
// fields, per spec: string fields are appended directly, array fields have
// their string elements appended, and one-level-deep object fields have
// their string values appended. Non-string/non-matching values are
// ignored. Each contributed piece is followed by a trailing space; the
// result is trimmed before being returned.
func ExtractText(doc Document, fields []string) string {
	var b []byte
	for _, field := range fields {
		v, ok := doc[field]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case string:
			b = append(b, val...)
			b = append(b, ' ')
		case []interface{}:
			for _, item := range val {
				if s, ok := item.(string); ok {
					b = append(b, s...)
					b = append(b, ' ')
				}
			}
		case map[string]interface{}:
			for _, item := range val {
				if s, ok := item.(string); ok {
					b = append(b, s...)
					b = append(b, ' ')
				}
			}
		}
	}

	return strings.TrimSpace(string(b))
}

// Serialize marshals the document back to its canonical JSON string form
// for storage in the inverted index's item table.
func Serialize(doc Document) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Deserialize parses a stored document string back into a generic JSON
// value for filter/sort evaluation.
func Deserialize(s string) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}
