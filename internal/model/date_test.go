package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOfIgnoresClockAndZone(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	// 23:50 in Seoul is still the same calendar day there, even though
	// the UTC clock already reads the previous afternoon.
	late := time.Date(2024, 5, 1, 23, 50, 0, 0, seoul)
	assert.Equal(t, "2024-05-01", DateOf(late).String())
	assert.True(t, DateOf(late).Equal(NewDate(2024, time.May, 1)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", d.String())

	_, err = ParseDate("05/01/2024")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestDateWindowArithmetic(t *testing.T) {
	today := NewDate(2024, time.May, 1)
	max := today.AddDays(6)
	assert.Equal(t, "2024-05-07", max.String())
	assert.False(t, max.After(max))
	assert.True(t, today.AddDays(7).After(max))

	// Month rollover.
	assert.Equal(t, "2024-06-01", NewDate(2024, time.May, 31).AddDays(1).String())
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.May, 7)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-07"`, string(b))

	var got Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-05-07"`), &got))
	assert.True(t, got.Equal(d))

	assert.Error(t, json.Unmarshal([]byte(`20240507`), &got))
}

func TestDateAt(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	d := NewDate(2024, time.May, 1)
	at := d.At(10, 30, seoul)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 0, seoul), at)
}
