package store

import (
	"sort"
	"strconv"
)

// Value wraps a raw stored value as decoded from the store's JSON wire
// format. Stored fields are loosely typed: booleans may arrive as native
// booleans or as 0/1 integers, numbers as integers or floats, and any field
// may be absent. All normalization of that ambiguity happens here, before a
// value reaches the rest of the system.
type Value struct {
	raw interface{}
}

// NewValue wraps a decoded JSON value
func NewValue(raw interface{}) Value {
	return Value{raw: raw}
}

// Raw returns the underlying decoded value
func (v Value) Raw() interface{} {
	return v.raw
}

// Exists reports whether the value is present in the store
func (v Value) Exists() bool {
	return v.raw != nil
}

// Bool normalizes a boolean-like stored value: integer 1 or native true map
// to true, anything else (0, false, absent, non-numeric) maps to false.
func (v Value) Bool() bool {
	switch t := v.raw.(type) {
	case bool:
		return t
	case float64:
		return t == 1
	case int:
		return t == 1
	case int64:
		return t == 1
	default:
		return false
	}
}

// Float normalizes a numeric stored value to floating point. Absent maps to
// 0, booleans map to 0/1 so boolean series can share the numeric timeline.
func (v Value) Float() float64 {
	switch t := v.raw.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// Int normalizes an integer stored value, truncating floats; absent maps to 0
func (v Value) Int() int {
	return int(v.Float())
}

// Str returns the value as a string, or "" when it is not one
func (v Value) Str() string {
	if s, ok := v.raw.(string); ok {
		return s
	}
	return ""
}

// Field returns the named child of an object value. Missing fields and
// non-object values yield an absent Value.
func (v Value) Field(name string) Value {
	if m, ok := v.raw.(map[string]interface{}); ok {
		return Value{raw: m[name]}
	}
	return Value{}
}

// Child pairs a child key with its value
type Child struct {
	Key   string
	Value Value
}

// Children returns the children of an object or list value. Object children
// are ordered by key, which for server-generated push keys matches insertion
// order. Scalar and absent values have no children.
func (v Value) Children() []Child {
	switch t := v.raw.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		children := make([]Child, 0, len(keys))
		for _, k := range keys {
			children = append(children, Child{Key: k, Value: Value{raw: t[k]}})
		}
		return children
	case []interface{}:
		children := make([]Child, 0, len(t))
		for i, c := range t {
			if c == nil {
				continue
			}
			children = append(children, Child{Key: strconv.Itoa(i), Value: Value{raw: c}})
		}
		return children
	default:
		return nil
	}
}
