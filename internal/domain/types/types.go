// Package types contains common types used across the application
package types

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Optional is a numeric value that may be unknown. An unknown value means
// "cannot be computed or not yet observable" and is never the same as zero.
type Optional struct {
	value float64
	known bool
}

// Known wraps a computed value.
func Known(v float64) Optional { return Optional{value: v, known: true} }

// Unknown returns the empty value.
func Unknown() Optional { return Optional{} }

// Bool maps true to Known(1) and false to Known(0).
func Bool(b bool) Optional {
	if b {
		return Known(1)
	}
	return Known(0)
}

// Get returns the value and whether it is known.
func (o Optional) Get() (float64, bool) { return o.value, o.known }

// IsKnown reports whether a value is present.
func (o Optional) IsKnown() bool { return o.known }

// Or returns the value when known, def otherwise.
func (o Optional) Or(def float64) float64 {
	if o.known {
		return o.value
	}
	return def
}

// Equal reports whether both values are unknown or both known and equal.
func (o Optional) Equal(other Optional) bool {
	if o.known != other.known {
		return false
	}
	return !o.known || o.value == other.value
}

// String renders the value, or an empty string when unknown.
func (o Optional) String() string {
	if !o.known {
		return ""
	}
	return strconv.FormatFloat(o.value, 'f', -1, 64)
}

// MarshalJSON encodes unknown values as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.known {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as unknown.
func (o *Optional) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Unknown()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Known(v)
	return nil
}
