package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlag_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`"true"`, true},
		{`"TRUE"`, true},
		{`"false"`, false},
		{`"1"`, true},
		{`1`, true},
		{`0`, false},
		{`null`, false},
		{`"maybe"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var f Flag
			require.NoError(t, json.Unmarshal([]byte(tt.in), &f))
			assert.Equal(t, tt.want, f.Bool())
		})
	}
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-05"`), &ts))
	got, ok := ts.Get()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)

	require.NoError(t, json.Unmarshal([]byte(`"not a date"`), &ts))
	_, ok = ts.Get()
	assert.False(t, ok)
	assert.False(t, ts.IsNull())
	assert.Equal(t, "not a date", ts.Raw)

	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsNull())
}

func TestFirstPresent_PrefersInvalidOverNull(t *testing.T) {
	bad := ParseTimestamp("31/31/2024")
	good := ParseTimestamp("2024-01-01")

	got := FirstPresent(Timestamp{}, bad, good)
	assert.Equal(t, bad, got)
	assert.Equal(t, good, FirstPresent(Timestamp{}, good))
	assert.True(t, FirstPresent().IsNull())
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`"25.50"`), &a))
	d, ok := a.Get()
	assert.True(t, ok)
	assert.Equal(t, "25.5", d.String())

	require.NoError(t, json.Unmarshal([]byte(`"twelve"`), &a))
	_, ok = a.Get()
	assert.False(t, ok)
	assert.True(t, a.Invalid)

	require.NoError(t, json.Unmarshal([]byte(`null`), &a))
	_, ok = a.Get()
	assert.False(t, ok)
	assert.False(t, a.Invalid)
}

func TestCount_RejectsFractions(t *testing.T) {
	var c Count
	require.NoError(t, json.Unmarshal([]byte(`12`), &c))
	n, ok := c.Get()
	assert.True(t, ok)
	assert.Equal(t, int64(12), n)

	require.NoError(t, json.Unmarshal([]byte(`1.5`), &c))
	_, ok = c.Get()
	assert.False(t, ok)
}

func TestAmount_RoundTrip(t *testing.T) {
	a := AmountFromFloat(10)
	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, "10", string(out))

	out, err = json.Marshal(Amount{Invalid: true})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}
