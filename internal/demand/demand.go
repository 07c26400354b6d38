// Package demand estimates covers for a day from a linear formula.
package demand

import (
	"errors"
	"math"
)

// ErrInvalidDay is returned for a day of week outside 0..6.
var ErrInvalidDay = errors.New("day_of_week must be between 0 and 6")

// Coefficients of the formula
//
//	(base - dayPenalty*day) * (holidayMultiplier if holiday) + (temp - referenceTemp) * tempSlope
//
// clamped at zero.
type Coefficients struct {
	Base              float64
	DayPenalty        float64
	HolidayMultiplier float64
	ReferenceTempC    float64
	TempSlope         float64
}

// Input is one demand query. A nil temperature skips the temperature term.
type Input struct {
	DayOfWeek    int
	IsHoliday    bool
	TemperatureC *float64
}

// Predict evaluates the formula, rounded to two decimals.
func (c Coefficients) Predict(in Input) (float64, error) {
	if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
		return 0, ErrInvalidDay
	}
	d := c.Base - c.DayPenalty*float64(in.DayOfWeek)
	if in.IsHoliday {
		d *= c.HolidayMultiplier
	}
	if in.TemperatureC != nil {
		d += (*in.TemperatureC - c.ReferenceTempC) * c.TempSlope
	}
	return math.Round(math.Max(d, 0)*100) / 100, nil
}
