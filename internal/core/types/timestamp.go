package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"
)

// timestampLayouts are tried in order when parsing raw date text.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// Timestamp keeps the raw text of a date field alongside its parsed value.
// A present but unparsable value is retained (Raw set, Valid false) so that
// date-range filters can reject it instead of silently letting it through.
type Timestamp struct {
	Time  time.Time
	Raw   string
	Valid bool
}

// NewTimestamp returns a valid Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Raw: t.Format(time.RFC3339), Valid: true}
}

// ParseTimestamp parses raw text with the supported layouts.
func ParseTimestamp(raw string) Timestamp {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Timestamp{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Timestamp{Time: t, Raw: raw, Valid: true}
		}
	}
	return Timestamp{Raw: raw}
}

// IsNull reports whether no value was present at all.
func (t Timestamp) IsNull() bool { return !t.Valid && t.Raw == "" }

// Get returns the parsed time and whether it is usable.
func (t Timestamp) Get() (time.Time, bool) { return t.Time, t.Valid }

// FirstPresent returns the first candidate that carries any value (valid or not).
func FirstPresent(candidates ...Timestamp) Timestamp {
	for _, c := range candidates {
		if !c.IsNull() {
			return c
		}
	}
	return Timestamp{}
}

// MarshalJSON emits RFC 3339 for valid values, the raw text otherwise.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case t.Valid:
		return json.Marshal(t.Time.Format(time.RFC3339))
	case t.Raw != "":
		return json.Marshal(t.Raw)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string or null. Non-string tokens are kept as invalid raw text.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	if data[0] != '"' {
		*t = Timestamp{Raw: string(data)}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseTimestamp(s)
	return nil
}

// Scan implements sql.Scanner. Columns may be timestamptz or legacy text.
func (t *Timestamp) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*t = Timestamp{}
	case time.Time:
		*t = NewTimestamp(v)
	case string:
		*t = ParseTimestamp(v)
	case []byte:
		*t = ParseTimestamp(string(v))
	default:
		*t = Timestamp{}
	}
	return nil
}

// Value implements driver.Valuer. Invalid values are written back verbatim.
func (t Timestamp) Value() (driver.Value, error) {
	switch {
	case t.Valid:
		return t.Time.Format(time.RFC3339), nil
	case t.Raw != "":
		return t.Raw, nil
	default:
		return nil, nil
	}
}
