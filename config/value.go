package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is a single configuration setting. The zero Value is unset, which
// is how the default parameter tables mark required-but-unspecified
// fields. JSON null unmarshals to an unset Value and an unset Value
// marshals back to null, so a stage parameter file keeps a record of the
// exempt fields that were left unset.
type Value struct {
	set bool
	v   interface{}
}

// New returns a set Value holding v.
func New(v interface{}) Value { return Value{set: true, v: v} }

// Unset returns the unset Value.
func Unset() Value { return Value{} }

// IsSet reports whether the value was assigned.
func (v Value) IsSet() bool { return v.set }

// Get returns the underlying value, nil when unset.
func (v Value) Get() interface{} {
	if !v.set {
		return nil
	}
	return v.v
}

// Str returns the value as a string. ok is false when the value is unset
// or holds a different type.
func (v Value) Str() (string, bool) {
	s, ok := v.v.(string)
	return s, v.set && ok
}

// Bool returns the value as a bool, false when unset or not a bool.
func (v Value) Bool() bool {
	b, ok := v.v.(bool)
	return v.set && ok && b
}

// Int returns the value as an int. JSON numbers arrive as float64 and are
// truncated.
func (v Value) Int() (int, bool) {
	if !v.set {
		return 0, false
	}
	switch n := v.v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// Float returns the value as a float64.
func (v Value) Float() (float64, bool) {
	if !v.set {
		return 0, false
	}
	switch n := v.v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// Strs returns the value as a list of strings. Lists parsed from JSON
// arrive as []interface{}; lists built by the default tables are
// []string.
func (v Value) Strs() ([]string, bool) {
	if !v.set {
		return nil, false
	}
	switch l := v.v.(type) {
	case []string:
		return l, true
	case []interface{}:
		out := make([]string, 0, len(l))
		for _, e := range l {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// Sub returns the value as a nested configuration block. Entries holding
// JSON null become unset Values.
func (v Value) Sub() (Config, bool) {
	if !v.set {
		return nil, false
	}
	switch m := v.v.(type) {
	case Config:
		return m, true
	case map[string]interface{}:
		sub := make(Config, len(m))
		for k, e := range m {
			if e == nil {
				sub[k] = Unset()
			} else {
				sub[k] = New(e)
			}
		}
		return sub, true
	}
	return nil, false
}

// String implements fmt.Stringer for log and error messages.
func (v Value) String() string {
	if !v.set {
		return "<unset>"
	}
	return fmt.Sprintf("%v", v.v)
}

// MarshalJSON writes unset values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON reads null as unset and anything else as set.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Value{set: true, v: raw}
	return nil
}
