package dashboard

import "brvm/internal/domain"

// Summary aggregates the market figures shown above the table.
type Summary struct {
	Count        int
	TotalVolume  int64
	TotalValue   float64
	AvgVariation float64
	Advancers    int
	Decliners    int
	Unchanged    int
}

// Summarize computes a Summary over records. AvgVariation is 0 when records
// is empty.
func Summarize(records []domain.Stock) Summary {
	var s Summary
	var sumVar float64
	for _, r := range records {
		s.Count++
		s.TotalVolume += r.Volume
		s.TotalValue += r.Value()
		sumVar += r.Variation
		switch DirectionOf(r.Variation) {
		case Up:
			s.Advancers++
		case Down:
			s.Decliners++
		default:
			s.Unchanged++
		}
	}
	if s.Count > 0 {
		s.AvgVariation = sumVar / float64(s.Count)
	}
	return s
}
