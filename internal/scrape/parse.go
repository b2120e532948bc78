package scrape

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"brvm/internal/domain"
)

// tableSelectors are tried in order; the first match wins.
var tableSelectors = []struct {
	attr, value string
}{
	{"id", "table_cours"},
	{"class", "table-cours"},
	{"class", "cours-table"},
	{"id", "dataTable"},
	{"class", "table"},
	{"id", "actions-table"},
}

// sectors maps known tickers to their sector.
var sectors = map[string]string{
	"BICIS": "Banque", "BOAB": "Banque", "BOAN": "Banque", "FTBC": "Banque",
	"SGBC": "Banque", "SLBC": "Banque", "SMBC": "Banque", "STBC": "Banque",
	"BSSL": "Ciment", "PALC": "Ciment", "SICC": "Ciment",
	"CABC": "Brasserie",
	"ETIT": "Télécom", "ONTBF": "Télécom", "SNTS": "Télécom",
	"NEIC": "Assurance", "STAC": "Assurance", "UNLC": "Assurance",
	"SAFC": "Finance",
	"SIVC": "Immobilier",
	"SOGC": "Pétrole",
	"SPHC": "Pharma",
	"TTLS": "Logistique",
}

// DefaultSector is used for unknown tickers.
const DefaultSector = "Divers"

// GuessSector returns the sector for symbol.
func GuessSector(symbol string) string {
	if s, ok := sectors[strings.ToUpper(symbol)]; ok {
		return s
	}
	return DefaultSector
}

// ParseQuotes finds the quotes table in doc and returns one stock per data
// row. Rows with fewer than five cells are skipped; a table with no usable
// row yields ErrNoRows.
func ParseQuotes(doc *html.Node) ([]domain.Stock, error) {
	table := findTable(doc)
	if table == nil {
		return nil, ErrNoTable
	}

	rows := findAll(table, atom.Tr)
	stocks := []domain.Stock{}
	for i, tr := range rows {
		if i == 0 {
			continue // header
		}
		var cells []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
				cells = append(cells, cleanText(textOf(c)))
			}
		}
		if len(cells) < 5 {
			continue
		}
		symbol := cells[0]
		if symbol == "" {
			continue
		}
		st := domain.Stock{
			Symbol:    symbol,
			Name:      cells[1],
			Sector:    GuessSector(symbol),
			LastPrice: ParsePrice(cells[2]),
			Variation: ParsePercentage(cells[3]),
			Volume:    ParseNumber(cells[4]),
		}
		st.Open = optionalCell(cells, 5)
		st.High = optionalCell(cells, 6)
		st.Low = optionalCell(cells, 7)
		st.PreviousClose = optionalCell(cells, 8)
		stocks = append(stocks, st)
	}
	if len(stocks) == 0 {
		return nil, ErrNoRows
	}
	return stocks, nil
}

func optionalCell(cells []string, i int) *float64 {
	if i >= len(cells) || cells[i] == "" {
		return nil
	}
	v := ParsePrice(cells[i])
	return &v
}

var (
	nonPrice  = regexp.MustCompile(`[^\d.,\-]`)
	nonDigits = regexp.MustCompile(`\D`)
)

// ParsePrice reads a price such as "14 500" or "1,250.50". Commas are
// thousands separators. Unparseable input yields 0.
func ParsePrice(s string) float64 {
	cleaned := strings.ReplaceAll(nonPrice.ReplaceAllString(s, ""), ",", "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParsePercentage reads a signed percentage such as "+1,25 %" or "-0.56%".
// A comma is a decimal separator here.
func ParsePercentage(s string) float64 {
	cleaned := strings.ReplaceAll(nonPrice.ReplaceAllString(s, ""), ",", ".")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseNumber keeps only digits, e.g. "12 500" becomes 12500.
func ParseNumber(s string) int64 {
	v, err := strconv.ParseInt(nonDigits.ReplaceAllString(s, ""), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ---------------------------------------------------------------------------
// DOM helpers
// ---------------------------------------------------------------------------

func findTable(doc *html.Node) *html.Node {
	tables := findAll(doc, atom.Table)
	for _, sel := range tableSelectors {
		for _, t := range tables {
			if matches(t, sel.attr, sel.value) {
				return t
			}
		}
	}
	return nil
}

func matches(n *html.Node, attr, value string) bool {
	for _, a := range n.Attr {
		if a.Key != attr {
			continue
		}
		if attr == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == value {
					return true
				}
			}
			return false
		}
		return a.Val == value
	}
	return false
}

func findAll(root *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// cleanText collapses whitespace runs to single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
