package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name      string
		current   time.Time
		anchorDay int
		expected  time.Time
	}{
		{
			name:      "Mid-month advance",
			current:   date(2025, time.January, 15),
			anchorDay: 15,
			expected:  date(2025, time.February, 15),
		},
		{
			name:      "Clamp to short February",
			current:   date(2025, time.January, 31),
			anchorDay: 31,
			expected:  date(2025, time.February, 28),
		},
		{
			name:      "Recover from short month",
			current:   date(2025, time.February, 28),
			anchorDay: 31,
			expected:  date(2025, time.March, 31),
		},
		{
			name:      "Leap year February",
			current:   date(2024, time.January, 31),
			anchorDay: 31,
			expected:  date(2024, time.February, 29),
		},
		{
			name:      "30-day month clamp",
			current:   date(2025, time.March, 31),
			anchorDay: 31,
			expected:  date(2025, time.April, 30),
		},
		{
			name:      "Year rollover",
			current:   date(2024, time.December, 15),
			anchorDay: 15,
			expected:  date(2025, time.January, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextDueDate(tt.current, tt.anchorDay))
		})
	}
}

func TestNextDueDateNoDrift(t *testing.T) {
	// A 31st-anchored schedule must return to the 31st after passing
	// through short months, never settling on the 28th.
	due := date(2025, time.January, 31)
	anchor := 31

	expected := []time.Time{
		date(2025, time.February, 28),
		date(2025, time.March, 31),
		date(2025, time.April, 30),
		date(2025, time.May, 31),
		date(2025, time.June, 30),
		date(2025, time.July, 31),
		date(2025, time.August, 31),
		date(2025, time.September, 30),
		date(2025, time.October, 31),
		date(2025, time.November, 30),
		date(2025, time.December, 31),
		date(2026, time.January, 31),
	}

	for _, want := range expected {
		due = NextDueDate(due, anchor)
		assert.Equal(t, want, due)
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, daysInMonth(2025, time.January))
	assert.Equal(t, 28, daysInMonth(2025, time.February))
	assert.Equal(t, 29, daysInMonth(2024, time.February))
	assert.Equal(t, 30, daysInMonth(2025, time.April))
	assert.Equal(t, 31, daysInMonth(2025, time.December))
}
