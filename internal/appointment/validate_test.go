package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidTimeOfDay(t *testing.T) {
	valid := []string{"00:00", "09:00", "9:00", "12:30", "23:59", "19:05"}
	for _, s := range valid {
		assert.True(t, ValidTimeOfDay(s), s)
	}

	invalid := []string{"", "24:00", "23:60", "9:5", "09:5", "9.30", "nine", "09:00:00", "-9:00"}
	for _, s := range invalid {
		assert.False(t, ValidTimeOfDay(s), s)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), d)

	// RFC 3339 timestamps collapse to the calendar date.
	d, err = ParseDate("2025-06-01T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("01/06/2025")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNormalizeVehicle(t *testing.T) {
	v := normalizeVehicle(Vehicle{
		Model:        "  Civic ",
		Year:         " 2020",
		Registration: "mh12ab1234",
	})

	assert.Equal(t, "Not Specified", v.Make)
	assert.Equal(t, "Civic", v.Model)
	assert.Equal(t, "2020", v.Year)
	assert.Equal(t, "MH12AB1234", v.Registration)
	assert.False(t, v.IsFreeform())

	f := normalizeVehicle(Vehicle{Freeform: "  red sedan  "})
	assert.True(t, f.IsFreeform())
	assert.Equal(t, "red sedan", f.Freeform)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+911234567890", normalizePhone("+91 1234-567 890"))
	assert.Equal(t, "9876543210", normalizePhone("(987) 654-3210"))
}

func TestVehicleDisplay(t *testing.T) {
	v := Vehicle{Make: "Honda", Model: "Civic", Year: "2020", Registration: "MH12AB1234"}
	assert.Equal(t, "Honda Civic (2020) - MH12AB1234", v.Display())

	f := Vehicle{Freeform: "old red car"}
	assert.Equal(t, "old red car", f.Display())
}
