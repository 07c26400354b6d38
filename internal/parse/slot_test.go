package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlot(t *testing.T) {
	testCases := []struct {
		name     string
		date     string
		clock    string
		expected Slot
		wantErr  bool
	}{
		{
			name:     "Full time with seconds",
			date:     "2025-01-06",
			clock:    "19:30:00",
			expected: Slot{Date: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), Hour: 19, Minute: 30, Weekday: 0},
		},
		{
			name:     "Short time on a Sunday",
			date:     "2025-01-05",
			clock:    "8:00",
			expected: Slot{Date: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), Hour: 8, Minute: 0, Weekday: 6},
		},
		{
			name:     "Timestamp date and zoned time",
			date:     "2025-01-10T00:00:00+00:00",
			clock:    "21:15:00+00",
			expected: Slot{Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), Hour: 21, Minute: 15, Weekday: 4},
		},
		{name: "Bad date", date: "10/01/2025", clock: "12:00", wantErr: true},
		{name: "Bad time", date: "2025-01-10", clock: "noon", wantErr: true},
		{name: "Hour out of range", date: "2025-01-10", clock: "25:00", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			slot, err := ParseSlot(tc.date, tc.clock)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, slot)
		})
	}
}

func TestNormalizeClock(t *testing.T) {
	got, err := NormalizeClock("9:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", got)

	_, err = NormalizeClock("9h30")
	assert.Error(t, err)

	assert.Equal(t, "19:30", ShortClock("19:30:00"))
	assert.Equal(t, "7", ShortClock("7"))
}
