// Package interest holds the day-count and simple-interest arithmetic used by
// the accrual engine. Everything is calendar-day based and decimal exact.
package interest

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DailyRatePlaces is the precision the daily rate is recorded with
	DailyRatePlaces = 12
	// AmountPlaces is the precision of every monetary amount
	AmountPlaces = 4
	// RatePlaces is the precision an annual interest rate is stored with
	RatePlaces = 6
)

// DailyInterest is the outcome of one day's accrual computation
type DailyInterest struct {
	DailyRate      decimal.Decimal
	InterestAmount decimal.Decimal
	DaysInYear     int
}

// Day truncates t to midnight of its UTC calendar date
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// HasPrecision reports whether d fits in places fractional digits without
// rounding. Trailing zeros do not count.
func HasPrecision(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// IsLeapYear applies the proleptic Gregorian rule
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func DaysInYear(date time.Time) int {
	if IsLeapYear(date.Year()) {
		return 366
	}
	return 365
}

// CalculateDailyInterest computes one day of simple interest. The amount is
// derived from principal*rate/days in a single division so no precision is
// lost to the intermediate daily rate, then rounded half-up to 4 places.
func CalculateDailyInterest(principal, annualRate decimal.Decimal, date time.Time) DailyInterest {
	days := DaysInYear(date)
	d := decimal.NewFromInt(int64(days))

	return DailyInterest{
		DailyRate:      annualRate.DivRound(d, DailyRatePlaces),
		InterestAmount: principal.Mul(annualRate).DivRound(d, AmountPlaces),
		DaysInYear:     days,
	}
}

// DateRange returns every calendar day from start through end inclusive.
// It returns nil when start is after end.
func DateRange(start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)
	if start.After(end) {
		return nil
	}

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// NextAccrualDate is the first day a loan still needs interest for
func NextAccrualDate(lastAccrual, disbursed *time.Time) (time.Time, bool) {
	if lastAccrual != nil {
		return Day(*lastAccrual).AddDate(0, 0, 1), true
	}
	if disbursed != nil {
		return Day(*disbursed), true
	}
	return time.Time{}, false
}
