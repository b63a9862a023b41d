package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

type meterPayload struct {
	Current NullableFloat `json:"current"`
}

func TestNullableFloat_Number(t *testing.T) {
	var p meterPayload
	assert.NoError(t, json.Unmarshal([]byte(`{"current": 123.5}`), &p))
	assert.NotNil(t, p.Current.Value)
	assert.Equal(t, 123.5, *p.Current.Value)
}

func TestNullableFloat_NumericString(t *testing.T) {
	var p meterPayload
	assert.NoError(t, json.Unmarshal([]byte(`{"current": "123.5"}`), &p))
	assert.NotNil(t, p.Current.Value)
	assert.Equal(t, 123.5, *p.Current.Value)
}

func TestNullableFloat_EmptyStringIsNull(t *testing.T) {
	var p meterPayload
	assert.NoError(t, json.Unmarshal([]byte(`{"current": ""}`), &p))
	assert.Nil(t, p.Current.Value)
}

func TestNullableFloat_NullAndOmitted(t *testing.T) {
	var p meterPayload
	assert.NoError(t, json.Unmarshal([]byte(`{"current": null}`), &p))
	assert.Nil(t, p.Current.Value)

	p = meterPayload{}
	assert.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.Nil(t, p.Current.Value)
}

func TestNullableFloat_GarbageString(t *testing.T) {
	var p meterPayload
	assert.Error(t, json.Unmarshal([]byte(`{"current": "abc"}`), &p))
}

func TestValidHistoryStatus(t *testing.T) {
	assert.True(t, ValidHistoryStatus(HistoryStatusPending))
	assert.True(t, ValidHistoryStatus(HistoryStatusCompleted))
	assert.True(t, ValidHistoryStatus(HistoryStatusCancelled))
	assert.False(t, ValidHistoryStatus("archived"))
	assert.False(t, ValidHistoryStatus(""))
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"superadmin", "admin", "user", "employee"} {
		role, ok := ParseRole(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, Role(valid), role)
	}
	_, ok := ParseRole("root")
	assert.False(t, ok)
}
