package shared

import (
	"fmt"
	"time"

	"github.com/sefer-erp/sefer-erp/internal/platform/httpx"
)

// Period identifies a billing month.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod validates and builds a Period.
func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: time.Month(month)}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate checks the period is a plausible billing month.
func (p Period) Validate() error {
	if p.Year < 2000 || p.Year > 2100 {
		return fmt.Errorf("%w: year %d out of range", httpx.ErrValidation, p.Year)
	}
	if p.Month < time.January || p.Month > time.December {
		return fmt.Errorf("%w: month %d out of range", httpx.ErrValidation, int(p.Month))
	}
	return nil
}

// Start returns midnight UTC on the first day of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight UTC on the first day of the following period.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// DayCount returns the number of days in the period's month.
func (p Period) DayCount() int {
	return p.End().AddDate(0, 0, -1).Day()
}

// Contains reports whether the date falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// Day returns the date for a 1-based day number within the period.
func (p Period) Day(day int) time.Time {
	return time.Date(p.Year, p.Month, day, 0, 0, 0, 0, time.UTC)
}

// String renders the period as "2026-03".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

var turkishMonths = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// Label renders the period for report headers, e.g. "Mart 2026".
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", turkishMonths[p.Month-1], p.Year)
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
// time.Weekday numbers Sunday as 0 and Saturday as 6.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Sunday || wd == time.Saturday
}
