package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"strconv"
	"strings"
)

// Flag is a boolean that tolerates the shapes legacy rows store booleans in:
// true/false, "true"/"false", "1"/"0", "yes"/"no", 1/0. Unrecognized input is false.
type Flag bool

// ParseFlag coerces a text value to a Flag.
func ParseFlag(s string) Flag {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "si", "sí", "t", "y":
		return true
	default:
		return false
	}
}

// Bool returns the plain boolean.
func (f Flag) Bool() bool { return bool(f) }

// MarshalJSON always emits a JSON boolean.
func (f Flag) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatBool(bool(f))), nil
}

// UnmarshalJSON accepts booleans, strings and numbers.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*f = false
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = ParseFlag(s)
	default:
		*f = ParseFlag(string(data))
	}
	return nil
}

// Scan implements sql.Scanner.
func (f *Flag) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*f = false
	case bool:
		*f = Flag(v)
	case int64:
		*f = v != 0
	case string:
		*f = ParseFlag(v)
	case []byte:
		*f = ParseFlag(string(v))
	default:
		*f = false
	}
	return nil
}

// Value implements driver.Valuer.
func (f Flag) Value() (driver.Value, error) {
	return bool(f), nil
}
