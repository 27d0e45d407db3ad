package interest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysInYear(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{"divisible by 400", date(2000, 2, 29), 366},
		{"century not divisible by 400", date(1900, 2, 28), 365},
		{"common year", date(2023, 6, 15), 365},
		{"leap year", date(2024, 6, 15), 366},
		{"2100 is not leap", date(2100, 1, 1), 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysInYear(tt.date))
		})
	}
}

func TestCalculateDailyInterest(t *testing.T) {
	principal := decimal.NewFromInt(10000)
	rate := decimal.RequireFromString("0.275")

	t.Run("365 day year", func(t *testing.T) {
		got := CalculateDailyInterest(principal, rate, date(2023, 3, 1))
		assert.True(t, got.InterestAmount.Equal(decimal.RequireFromString("7.5342")), got.InterestAmount.String())
		assert.Equal(t, 365, got.DaysInYear)
		assert.Equal(t, "0.000753424658", got.DailyRate.StringFixed(DailyRatePlaces))
	})

	t.Run("366 day year", func(t *testing.T) {
		got := CalculateDailyInterest(principal, rate, date(2024, 3, 1))
		assert.True(t, got.InterestAmount.Equal(decimal.RequireFromString("7.5137")), got.InterestAmount.String())
		assert.Equal(t, 366, got.DaysInYear)
	})

	t.Run("rounds half up", func(t *testing.T) {
		// 365 * 0.00005 / 365 = 0.00005 -> 0.0001
		got := CalculateDailyInterest(decimal.NewFromInt(365), decimal.RequireFromString("0.00005"), date(2023, 1, 1))
		assert.Equal(t, "0.0001", got.InterestAmount.StringFixed(AmountPlaces))
	})

	t.Run("zero principal", func(t *testing.T) {
		got := CalculateDailyInterest(decimal.Zero, rate, date(2023, 1, 1))
		assert.True(t, got.InterestAmount.IsZero())
	})
}

func TestDateRange(t *testing.T) {
	t.Run("inclusive range", func(t *testing.T) {
		got := DateRange(date(2024, 2, 27), date(2024, 3, 1))
		require.Len(t, got, 4)
		assert.Equal(t, date(2024, 2, 29), got[2])
		assert.Equal(t, date(2024, 3, 1), got[3])
	})

	t.Run("single day", func(t *testing.T) {
		got := DateRange(date(2024, 1, 1), date(2024, 1, 1))
		assert.Len(t, got, 1)
	})

	t.Run("start after end", func(t *testing.T) {
		assert.Nil(t, DateRange(date(2024, 1, 2), date(2024, 1, 1)))
	})

	t.Run("ignores time of day", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
		end := time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC)
		assert.Len(t, DateRange(start, end), 2)
	})
}

func TestDay(t *testing.T) {
	lagos := time.FixedZone("WAT", 3600)
	newYork := time.FixedZone("EST", -5*3600)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"utc midday", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), date(2024, 3, 1)},
		{"east of utc just after midnight", time.Date(2024, 3, 1, 0, 30, 0, 0, lagos), date(2024, 2, 29)},
		{"west of utc at utc midnight", time.Date(2024, 2, 29, 19, 0, 0, 0, newYork), date(2024, 3, 1)},
		{"west of utc in the evening", time.Date(2024, 2, 29, 18, 59, 0, 0, newYork), date(2024, 2, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Day(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestHasPrecision(t *testing.T) {
	tests := []struct {
		value  string
		places int32
		want   bool
	}{
		{"1.0001", AmountPlaces, true},
		{"1.50000", AmountPlaces, true},
		{"100", AmountPlaces, true},
		{"1.00005", AmountPlaces, false},
		{"0.00001", AmountPlaces, false},
		{"0.275", RatePlaces, true},
		{"0.1234567", RatePlaces, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPrecision(decimal.RequireFromString(tt.value), tt.places))
		})
	}
}

func TestNextAccrualDate(t *testing.T) {
	disbursed := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	last := date(2024, 5, 12)

	got, ok := NextAccrualDate(&last, &disbursed)
	assert.True(t, ok)
	assert.Equal(t, date(2024, 5, 13), got)

	got, ok = NextAccrualDate(nil, &disbursed)
	assert.True(t, ok)
	assert.Equal(t, date(2024, 5, 10), got)

	_, ok = NextAccrualDate(nil, nil)
	assert.False(t, ok)
}
