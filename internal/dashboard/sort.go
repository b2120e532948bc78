package dashboard

import (
	"sort"
	"strconv"
	"strings"

	"brvm/internal/domain"
)

// Field names a sortable column.
type Field string

const (
	FieldSymbol    Field = "symbol"
	FieldName      Field = "name"
	FieldSector    Field = "sector"
	FieldLastPrice Field = "last_price"
	FieldVariation Field = "variation"
	FieldVolume    Field = "volume"
	FieldValue     Field = "value"
)

// Column describes one table column and how it sorts.
type Column struct {
	Field   Field
	Title   string
	Numeric bool
}

// Columns is the table layout in display order.
var Columns = []Column{
	{Field: FieldSymbol, Title: "Symbol"},
	{Field: FieldName, Title: "Company"},
	{Field: FieldSector, Title: "Sector"},
	{Field: FieldLastPrice, Title: "Price", Numeric: true},
	{Field: FieldVariation, Title: "Var.", Numeric: true},
	{Field: FieldVolume, Title: "Volume", Numeric: true},
	{Field: FieldValue, Title: "Value", Numeric: true},
}

// ColumnFor returns the column for f.
func ColumnFor(f Field) (Column, bool) {
	for _, c := range Columns {
		if c.Field == f {
			return c, true
		}
	}
	return Column{}, false
}

// SortState is the active sort column and direction.
type SortState struct {
	Field     Field
	Ascending bool
	Numeric   bool
}

// DefaultSort orders by symbol, ascending.
var DefaultSort = SortState{Field: FieldSymbol, Ascending: true}

// Label returns a short description such as "Price ▼".
func (s SortState) Label() string {
	title := string(s.Field)
	if c, ok := ColumnFor(s.Field); ok {
		title = c.Title
	}
	return title + " " + s.Indicator()
}

// Indicator returns ▲ for ascending and ▼ for descending.
func (s SortState) Indicator() string {
	if s.Ascending {
		return "▲"
	}
	return "▼"
}

// FieldText returns the textual form of a record field used for comparison.
func FieldText(s domain.Stock, f Field) string {
	switch f {
	case FieldSymbol:
		return s.Symbol
	case FieldName:
		return s.Name
	case FieldSector:
		return s.Sector
	case FieldLastPrice:
		return strconv.FormatFloat(s.LastPrice, 'f', -1, 64)
	case FieldVariation:
		return strconv.FormatFloat(s.Variation, 'f', -1, 64)
	case FieldVolume:
		return strconv.FormatInt(s.Volume, 10)
	case FieldValue:
		return strconv.FormatFloat(s.Value(), 'f', -1, 64)
	}
	return ""
}

func numericKey(s domain.Stock, f Field) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(FieldText(s, f)), 64)
	if err != nil {
		return 0
	}
	return v
}

// sortStocks orders list in place, keeping equal keys in their input order.
func sortStocks(list []domain.Stock, st SortState) {
	if st.Numeric {
		sort.SliceStable(list, func(i, j int) bool {
			a, b := numericKey(list[i], st.Field), numericKey(list[j], st.Field)
			if st.Ascending {
				return a < b
			}
			return a > b
		})
		return
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := FieldText(list[i], st.Field), FieldText(list[j], st.Field)
		if st.Ascending {
			return a < b
		}
		return a > b
	})
}
