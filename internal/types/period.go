// Package types implements special types for the budget backend.
package types

import (
	"fmt"
	"time"
)

// Period is a month within a fiscal year.
type Period struct {
	Month int
	Year  int
}

// NewPeriod returns a new Period.
func NewPeriod(year int, month int) Period {
	return Period{Month: month, Year: year}
}

// PeriodOf returns the Period a time instant falls into.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// String returns the period formatted as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Valid reports whether the period denotes an actual calendar month.
func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year > 0
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool {
	return p.Month == 0 && p.Year == 0
}

// Contains reports whether the time instant is in the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}
