package dashboard

import (
	"brvm/internal/domain"
)

// NoDataMessage is shown in place of rows when there is nothing to display.
const NoDataMessage = "No data available"

// UnspecifiedSector is the sector chart bucket of records without a sector.
const UnspecifiedSector = "Unspecified"

// Action identifies a per-row interaction.
type Action string

const (
	ActionDetails Action = "details"
	ActionWatch   Action = "watch"
)

// RowAction is an interaction bound to one record.
type RowAction struct {
	Action Action
	Symbol string
}

// Row is the display model of one table line.
type Row struct {
	Symbol    string
	Name      string
	Sector    string
	Price     string
	Variation string
	Direction Direction
	Volume    string
	Value     string
	Actions   []RowAction

	// Placeholder rows carry only Message.
	Placeholder bool
	Retry       bool
	Message     string
}

// Rows projects records into table rows. An empty input yields a single
// placeholder row.
func Rows(records []domain.Stock, f *Formatter) []Row {
	if len(records) == 0 {
		return []Row{{Placeholder: true, Message: NoDataMessage}}
	}

	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			Symbol:    r.Symbol,
			Name:      r.Name,
			Sector:    r.Sector,
			Price:     f.Currency(r.LastPrice),
			Variation: FormatVariation(r.Variation),
			Direction: DirectionOf(r.Variation),
			Volume:    f.Number(r.Volume),
			Value:     f.Currency(r.Value()),
			Actions: []RowAction{
				{Action: ActionDetails, Symbol: r.Symbol},
				{Action: ActionWatch, Symbol: r.Symbol},
			},
		})
	}
	return rows
}

// ErrorRow is the single row shown after a failed load.
func ErrorRow(message string) Row {
	return Row{Placeholder: true, Retry: true, Message: message}
}

// HeaderCell is one column title plus its sort indicator, if active.
type HeaderCell struct {
	Column    Column
	Indicator string
}

// Title returns the column title with the indicator appended when set.
func (h HeaderCell) Title() string {
	if h.Indicator == "" {
		return h.Column.Title
	}
	return h.Column.Title + " " + h.Indicator
}

// Header returns the table header with the indicator on the active column
// only.
func Header(columns []Column, st SortState) []HeaderCell {
	cells := make([]HeaderCell, len(columns))
	for i, c := range columns {
		cells[i] = HeaderCell{Column: c}
		if c.Field == st.Field {
			cells[i].Indicator = st.Indicator()
		}
	}
	return cells
}

// Detail is the display model of the per-stock detail view.
type Detail struct {
	Symbol        string
	Name          string
	Sector        string
	Price         string
	Variation     string
	Direction     Direction
	Volume        string
	Value         string
	Open          string
	High          string
	Low           string
	PreviousClose string
}

// DetailFor builds the detail view for symbol.
func DetailFor(records []domain.Stock, symbol string, f *Formatter) (Detail, bool) {
	for _, r := range records {
		if r.Symbol != symbol {
			continue
		}
		return Detail{
			Symbol:        r.Symbol,
			Name:          r.Name,
			Sector:        optionalText(r.Sector),
			Price:         f.Currency(r.LastPrice),
			Variation:     FormatVariation(r.Variation),
			Direction:     DirectionOf(r.Variation),
			Volume:        f.Number(r.Volume),
			Value:         f.Currency(r.Value()),
			Open:          optionalPrice(f, r.Open),
			High:          optionalPrice(f, r.High),
			Low:           optionalPrice(f, r.Low),
			PreviousClose: optionalPrice(f, r.PreviousClose),
		}, true
	}
	return Detail{}, false
}

func optionalPrice(f *Formatter, p *float64) string {
	if p == nil {
		return "-"
	}
	return f.Currency(*p)
}

func optionalText(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// sectorOf is the chart bucket of r. Table rows keep the raw sector.
func sectorOf(r domain.Stock) string {
	if r.Sector == "" {
		return UnspecifiedSector
	}
	return r.Sector
}
