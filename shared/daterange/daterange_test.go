package daterange_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villa/shared/daterange"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, checkIn, checkOut time.Time) daterange.Range {
	t.Helper()

	r, err := daterange.New(checkIn, checkOut)
	require.NoError(t, err)

	return r
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		wantErr  bool
	}{
		{name: "chronological", checkIn: date(2025, 7, 1), checkOut: date(2025, 7, 5)},
		{name: "single night", checkIn: date(2025, 7, 1), checkOut: date(2025, 7, 2)},
		{name: "same day", checkIn: date(2025, 7, 1), checkOut: date(2025, 7, 1), wantErr: true},
		{name: "reversed", checkIn: date(2025, 7, 5), checkOut: date(2025, 7, 1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := daterange.New(tt.checkIn, tt.checkOut)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewNormalizesTimeOfDay(t *testing.T) {
	r, err := daterange.New(
		time.Date(2025, 7, 1, 15, 30, 0, 0, time.UTC),
		time.Date(2025, 7, 5, 9, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	assert.Equal(t, date(2025, 7, 1), r.CheckIn)
	assert.Equal(t, date(2025, 7, 5), r.CheckOut)
}

func TestOverlaps(t *testing.T) {
	base := mustRange(t, date(2025, 6, 5), date(2025, 6, 10))

	tests := []struct {
		name  string
		other daterange.Range
		want  bool
	}{
		{name: "identical", other: mustRange(t, date(2025, 6, 5), date(2025, 6, 10)), want: true},
		{name: "contained", other: mustRange(t, date(2025, 6, 6), date(2025, 6, 8)), want: true},
		{name: "overlaps start", other: mustRange(t, date(2025, 6, 1), date(2025, 6, 6)), want: true},
		{name: "overlaps end", other: mustRange(t, date(2025, 6, 9), date(2025, 6, 15)), want: true},
		{name: "checkout equals checkin", other: mustRange(t, date(2025, 6, 10), date(2025, 6, 12)), want: false},
		{name: "checkin equals checkout", other: mustRange(t, date(2025, 6, 1), date(2025, 6, 5)), want: false},
		{name: "disjoint after", other: mustRange(t, date(2025, 6, 20), date(2025, 6, 25)), want: false},
		{name: "disjoint before", other: mustRange(t, date(2025, 6, 1), date(2025, 6, 3)), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestContains(t *testing.T) {
	r := mustRange(t, date(2025, 6, 5), date(2025, 6, 10))

	assert.True(t, r.Contains(date(2025, 6, 5)))
	assert.True(t, r.Contains(date(2025, 6, 9)))
	assert.False(t, r.Contains(date(2025, 6, 10)), "check-out day is not a booked night")
	assert.False(t, r.Contains(date(2025, 6, 4)))
}

func TestNights(t *testing.T) {
	assert.Equal(t, 4, mustRange(t, date(2025, 7, 1), date(2025, 7, 5)).Nights())
	assert.Equal(t, 1, mustRange(t, date(2025, 7, 1), date(2025, 7, 2)).Nights())
}

func TestString(t *testing.T) {
	assert.Equal(t, "2025-07-01..2025-07-05", mustRange(t, date(2025, 7, 1), date(2025, 7, 5)).String())
}
