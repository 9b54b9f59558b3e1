package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Venue     string `validate:"required"`
	StartTime string `validate:"omitempty,datetime=15:04"`
	Currency  string `validate:"required,iso4217"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(sample{Venue: "Fabric", StartTime: "23:00", Currency: "GBP"}))

	err := Struct(sample{StartTime: "11pm", Currency: "POUNDS"})
	require.ErrorIs(t, err, ErrInvalid)

	var verr Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["venue"])
	assert.Equal(t, "must match 15:04", verr.Fields["start_time"])
	assert.Contains(t, verr.Fields, "currency")
}

func TestField(t *testing.T) {
	err := Field("client_id", "unknown client")
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, "invalid input (client_id: unknown client)", err.Error())
}
