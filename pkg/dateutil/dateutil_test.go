package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestAgeCalculation tests the age calculation function with various scenarios
func TestAgeCalculation(t *testing.T) {
	tests := []struct {
		name        string
		birthDate   time.Time
		atDate      time.Time
		expectedAge int
	}{
		{
			name:        "Same month and day",
			birthDate:   time.Date(1990, 2, 25, 0, 0, 0, 0, time.UTC),
			atDate:      time.Date(2025, 2, 25, 0, 0, 0, 0, time.UTC),
			expectedAge: 35,
		},
		{
			name:        "Day before birthday",
			birthDate:   time.Date(1990, 2, 25, 0, 0, 0, 0, time.UTC),
			atDate:      time.Date(2025, 2, 24, 0, 0, 0, 0, time.UTC),
			expectedAge: 34,
		},
		{
			name:        "Month after birthday",
			birthDate:   time.Date(1990, 2, 25, 0, 0, 0, 0, time.UTC),
			atDate:      time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC),
			expectedAge: 35,
		},
		{
			name:        "Leap year birth, non-leap year check",
			birthDate:   time.Date(1964, 2, 29, 0, 0, 0, 0, time.UTC),
			atDate:      time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
			expectedAge: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedAge, Age(tt.birthDate, tt.atDate))
		})
	}
}

func TestAgeInMonths(t *testing.T) {
	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 420, AgeInMonths(birth, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 419, AgeInMonths(birth, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 423, AgeInMonths(birth, time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC)))
	assert.InDelta(t, 35.25, FractionalAge(birth, time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC)), 1e-12)
}

func TestMonthsBetween(t *testing.T) {
	from := time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, MonthsBetween(from, to))
	assert.Equal(t, -3, MonthsBetween(to, from))
}

func TestCalendarMonth(t *testing.T) {
	tests := []struct {
		start  time.Month
		offset int
		want   time.Month
	}{
		{time.January, 0, time.January},
		{time.January, 11, time.December},
		{time.January, 12, time.January},
		{time.March, 9, time.December},
		{time.December, 1, time.January},
		{time.July, 29, time.December},
		{time.January, -1, time.December},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalendarMonth(tt.start, tt.offset), "start=%s offset=%d", tt.start, tt.offset)
	}
}

func TestRetirementDate(t *testing.T) {
	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2055, 6, 1, 0, 0, 0, 0, time.UTC), RetirementDate(birth, 65))
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), BeginningOfMonth(time.Date(2025, 6, 18, 13, 0, 0, 0, time.UTC)))
}

func TestAddYears(t *testing.T) {
	d := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC), AddYears(d, 5))
}
