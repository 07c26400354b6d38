package demand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = Coefficients{Base: 100, DayPenalty: 1, HolidayMultiplier: 1.2, ReferenceTempC: 25, TempSlope: 1.5}

func temp(v float64) *float64 { return &v }

func TestPredict(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want float64
	}{
		{"weekday with temperature", Input{DayOfWeek: 4, TemperatureC: temp(22.5)}, 92.25},
		{"no temperature", Input{DayOfWeek: 0}, 100},
		{"holiday", Input{DayOfWeek: 6, IsHoliday: true}, 112.8},
		{"hot holiday", Input{DayOfWeek: 2, IsHoliday: true, TemperatureC: temp(30)}, 125.1},
		{"clamped at zero", Input{DayOfWeek: 1, TemperatureC: temp(-60)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := defaults.Predict(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPredict_DayPenaltyFive(t *testing.T) {
	c := defaults
	c.DayPenalty = 5
	got, err := c.Predict(Input{DayOfWeek: 4, TemperatureC: temp(22.5)})
	require.NoError(t, err)
	assert.Equal(t, 76.25, got)
}

func TestPredict_InvalidDay(t *testing.T) {
	_, err := defaults.Predict(Input{DayOfWeek: 7})
	assert.ErrorIs(t, err, ErrInvalidDay)
	_, err = defaults.Predict(Input{DayOfWeek: -1})
	assert.ErrorIs(t, err, ErrInvalidDay)
}
