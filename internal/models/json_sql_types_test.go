package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Админский API отдает записи о доступе к контактам как есть,
// поэтому paid_at должен сериализоваться в null, пока оплаты не было.
func TestNullTimeJSON(t *testing.T) {
	b, err := json.Marshal(NullTime{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	ts := time.Date(2025, 5, 17, 12, 30, 0, 0, time.UTC)
	b, err = json.Marshal(NewNullTime(ts))
	require.NoError(t, err)

	var back NullTime
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Valid)
	assert.True(t, back.Time.Equal(ts))

	require.NoError(t, json.Unmarshal([]byte("null"), &back))
	assert.False(t, back.Valid)
}

func TestNullFloat64JSON(t *testing.T) {
	b, err := json.Marshal(NullFloat64{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	b, err = json.Marshal(NewNullFloat64(4.5))
	require.NoError(t, err)
	assert.Equal(t, "4.5", string(b))

	var back NullFloat64
	require.NoError(t, json.Unmarshal([]byte("3.8"), &back))
	assert.True(t, back.Valid)
	assert.Equal(t, 3.8, back.Float64)
}

func TestStringListContains(t *testing.T) {
	sl := StringList{"Москва", "Химки"}
	assert.True(t, sl.Contains("Химки"))
	assert.False(t, sl.Contains("Тверь"))
	assert.False(t, StringList(nil).Contains("Москва"))
}
