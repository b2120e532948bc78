package dashboard

import (
	"strings"

	"brvm/internal/domain"
)

// Filter returns the records whose symbol, name or sector contains term,
// case-insensitively. A blank term returns records unchanged.
func Filter(records []domain.Stock, term string) []domain.Stock {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return records
	}

	var out []domain.Stock
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Symbol), term) ||
			strings.Contains(strings.ToLower(r.Name), term) ||
			strings.Contains(strings.ToLower(r.Sector), term) {
			out = append(out, r)
		}
	}
	return out
}
