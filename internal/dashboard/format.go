package dashboard

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders locale-aware display strings. It is safe for concurrent
// use once built.
type Formatter struct {
	printer    *message.Printer
	unit       currency.Unit
	dateLayout string
	loc        *time.Location
}

// NewFormatter builds a Formatter for a BCP 47 locale (e.g. "fr-FR"), an ISO
// 4217 currency code (e.g. "XOF") and a Go time layout.
func NewFormatter(locale, currencyCode, dateLayout string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("parsing currency %q: %w", currencyCode, err)
	}
	if dateLayout == "" {
		dateLayout = "02/01/2006 15:04"
	}
	return &Formatter{
		printer:    message.NewPrinter(tag),
		unit:       unit,
		dateLayout: dateLayout,
		loc:        time.Local,
	}, nil
}

// WithLocation returns a copy of f that renders dates in loc.
func (f *Formatter) WithLocation(loc *time.Location) *Formatter {
	c := *f
	c.loc = loc
	return &c
}

// Currency formats v as a whole amount with thousands grouping followed by
// the currency code, e.g. "14,500 XOF".
func (f *Formatter) Currency(v float64) string {
	return f.printer.Sprintf("%d", int64(math.Round(v))) + " " + f.unit.String()
}

// Number formats n with the locale's thousands separator.
func (f *Formatter) Number(n int64) string {
	return f.printer.Sprintf("%d", n)
}

// DateTime formats t with the configured layout, or "-" for the zero time.
func (f *Formatter) DateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(f.loc).Format(f.dateLayout)
}

// Direction classifies a variation by sign.
type Direction int

const (
	Neutral Direction = iota
	Up
	Down
)

// DirectionOf returns Up for positive, Down for negative and Neutral for zero.
func DirectionOf(v float64) Direction {
	switch {
	case v > 0:
		return Up
	case v < 0:
		return Down
	default:
		return Neutral
	}
}

// Glyph returns the arrow shown next to a variation.
func (d Direction) Glyph() string {
	switch d {
	case Up:
		return "▲"
	case Down:
		return "▼"
	default:
		return "●"
	}
}

// Class returns the style class name for the direction.
func (d Direction) Class() string {
	switch d {
	case Up:
		return "stock-up"
	case Down:
		return "stock-down"
	default:
		return "stock-neutral"
	}
}

// Color returns the hex color charts and rows use for the direction.
func (d Direction) Color() string {
	switch d {
	case Up:
		return "#27ae60"
	case Down:
		return "#e74c3c"
	default:
		return "#7f8c8d"
	}
}

// FormatVariation renders a variation as glyph plus absolute value with two
// decimals, e.g. "▼ 0.56%".
func FormatVariation(v float64) string {
	return fmt.Sprintf("%s %.2f%%", DirectionOf(v).Glyph(), math.Abs(v))
}

// FormatCompact formats a large amount with B/M/K suffixes.
func FormatCompact(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
