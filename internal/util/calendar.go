package util

import "time"

// BRVM continuous trading runs 09:00-15:30 Abidjan time (UTC+0), Monday to
// Friday. Exchange holidays are not modelled.
var (
	sessionOpen  = 9 * time.Hour
	sessionClose = 15*time.Hour + 30*time.Minute
)

// TradingCalendar answers market-hours questions for the BRVM.
type TradingCalendar struct {
	loc *time.Location
}

// NewTradingCalendar returns a calendar in the exchange's time zone.
func NewTradingCalendar() *TradingCalendar {
	loc, err := time.LoadLocation("Africa/Abidjan")
	if err != nil {
		loc = time.UTC
	}
	return &TradingCalendar{loc: loc}
}

// Location is the exchange's time zone.
func (tc *TradingCalendar) Location() *time.Location {
	return tc.loc
}

// IsMarketOpen reports whether t falls inside a trading session.
func (tc *TradingCalendar) IsMarketOpen(t time.Time) bool {
	t = t.In(tc.loc)
	if !isWeekday(t) {
		return false
	}
	since := sinceMidnight(t)
	return since >= sessionOpen && since < sessionClose
}

// NextOpen returns the next session open at or after t.
func (tc *TradingCalendar) NextOpen(t time.Time) time.Time {
	t = t.In(tc.loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tc.loc)
	if isWeekday(t) && sinceMidnight(t) <= sessionOpen {
		return day.Add(sessionOpen)
	}
	for {
		day = day.AddDate(0, 0, 1)
		if isWeekday(day) {
			return day.Add(sessionOpen)
		}
	}
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func sinceMidnight(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}
