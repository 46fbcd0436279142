// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package tdjson implements the wire format of TDLib-style JSON backends:
// every message is a JSON object carrying a "@type" field that names its kind.
package tdjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// TypeField is the key every inbound and outbound object is tagged with.
const TypeField = "@type"

var (
	ErrMissingType = errors.New("object has no @type field")
)

// Object is a single decoded wire object. Several 64-bit fields (chat order,
// some ids) are serialized as JSON strings by the backend because they exceed
// double precision, so numeric getters accept both representations. Numbers
// are kept as json.Number internally for the same reason.
//
// Objects handed to the dispatcher are treated as immutable; use Clone, With
// or Merge to derive patched copies instead of assigning into the map.
type Object map[string]any

// Decode parses one encoded message into an Object. The payload must be a
// JSON object with a non-empty string @type.
func Decode(data []byte) (Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var obj Object
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if typ, ok := obj[TypeField].(string); !ok || typ == "" {
		return nil, ErrMissingType
	}
	return obj, nil
}

// Marshal encodes an outbound Object. The @type tag must be present.
func Marshal(obj Object) ([]byte, error) {
	if typ, ok := obj[TypeField].(string); !ok || typ == "" {
		return nil, ErrMissingType
	}
	return json.Marshal(obj)
}

// Type returns the value of the @type tag.
func (obj Object) Type() string {
	typ, _ := obj[TypeField].(string)
	return typ
}

// Has reports whether the key is present at the top level.
func (obj Object) Has(key string) bool {
	_, ok := obj[key]
	return ok
}

// String returns the named field as a string. Numbers are formatted, anything
// else (or a missing key) returns "".
func (obj Object) String(key string) string {
	switch val := obj[key].(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return ""
	}
}

// Int64 returns the named field as an int64, accepting JSON numbers as well
// as the backend's stringified 64-bit values. Missing or unparseable fields
// return 0.
func (obj Object) Int64(key string) int64 {
	return coerceInt64(obj[key])
}

func coerceInt64(raw any) int64 {
	switch val := raw.(type) {
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			f, ferr := val.Float64()
			if ferr != nil {
				return 0
			}
			return int64(f)
		}
		return i
	case string:
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0
		}
		return i
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	default:
		return 0
	}
}

// Int returns the named field as an int, with the same coercion as Int64.
func (obj Object) Int(key string) int {
	return int(obj.Int64(key))
}

// Bool returns the named field as a bool, false for anything non-boolean.
func (obj Object) Bool(key string) bool {
	val, _ := obj[key].(bool)
	return val
}

// Object returns the named field as a nested Object, nil if it is missing or
// not an object.
func (obj Object) Object(key string) Object {
	switch val := obj[key].(type) {
	case Object:
		return val
	case map[string]any:
		return Object(val)
	default:
		return nil
	}
}

// Array returns the named field as a raw slice, nil if missing.
func (obj Object) Array(key string) []any {
	val, _ := obj[key].([]any)
	return val
}

// ObjectArray returns the named field as a slice of Objects, skipping
// non-object elements.
func (obj Object) ObjectArray(key string) []Object {
	raw, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Object, 0, len(raw))
	for _, item := range raw {
		switch val := item.(type) {
		case Object:
			out = append(out, val)
		case map[string]any:
			out = append(out, Object(val))
		}
	}
	return out
}

// Int64Array returns the named field as a slice of 64-bit integers, with the
// same per-element coercion as Int64.
func (obj Object) Int64Array(key string) []int64 {
	raw, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int64, len(raw))
	for i, item := range raw {
		out[i] = coerceInt64(item)
	}
	return out
}

// Clone returns a shallow copy of the object. Nested objects are shared, which
// is fine as long as stored objects are never mutated in place.
func (obj Object) Clone() Object {
	if obj == nil {
		return nil
	}
	out := make(Object, len(obj))
	for key, val := range obj {
		out[key] = val
	}
	return out
}

// With returns a copy of the object with one field replaced.
func (obj Object) With(key string, value any) Object {
	out := obj.Clone()
	if out == nil {
		out = make(Object, 1)
	}
	out[key] = value
	return out
}

// Merge returns a copy of the object with all fields of the patch applied on
// top. The receiver and the patch are left untouched. A nil receiver yields a
// copy of the patch, so Merge works as an upsert.
func (obj Object) Merge(patch Object) Object {
	if obj == nil {
		return patch.Clone()
	}
	out := obj.Clone()
	for key, val := range patch {
		out[key] = val
	}
	return out
}
