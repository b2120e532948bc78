package dashboard

import (
	"math"
	"sort"

	"brvm/internal/domain"
)

// DefaultChartSize is the number of bars in the top performers chart.
const DefaultChartSize = 10

// SectorPalette colors sector slices in order; it wraps when exhausted.
var SectorPalette = []string{
	"#3498db", "#2ecc71", "#e74c3c", "#f39c12", "#9b59b6",
	"#1abc9c", "#d35400", "#34495e", "#16a085", "#c0392b",
}

// Bar is one entry of the top performers chart.
type Bar struct {
	Symbol    string
	Variation float64
	Direction Direction
	Color     string
}

// SectorSlice is one bucket of the sector distribution.
type SectorSlice struct {
	Sector string
	Count  int
	Share  float64 // fraction of Total, 0..1
	Color  string
}

// SectorChart is the full sector distribution.
type SectorChart struct {
	Slices []SectorSlice
	Total  int
}

// Charts bundles both chart datasets. Each build returns a fresh value.
type Charts struct {
	Performers []Bar
	Sectors    SectorChart
}

// TopPerformers returns at most n records ordered by descending absolute
// variation. Ties keep record order. records is not modified.
func TopPerformers(records []domain.Stock, n int) []Bar {
	if n <= 0 {
		n = DefaultChartSize
	}
	sorted := make([]domain.Stock, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Variation) > math.Abs(sorted[j].Variation)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	bars := make([]Bar, len(sorted))
	for i, r := range sorted {
		d := DirectionOf(r.Variation)
		bars[i] = Bar{Symbol: r.Symbol, Variation: r.Variation, Direction: d, Color: d.Color()}
	}
	return bars
}

// SectorBreakdown counts records per sector in first-occurrence order.
// Records without a sector count as UnspecifiedSector.
func SectorBreakdown(records []domain.Stock) SectorChart {
	index := make(map[string]int)
	var slices []SectorSlice
	for _, r := range records {
		sector := sectorOf(r)
		i, ok := index[sector]
		if !ok {
			i = len(slices)
			index[sector] = i
			slices = append(slices, SectorSlice{
				Sector: sector,
				Color:  SectorPalette[i%len(SectorPalette)],
			})
		}
		slices[i].Count++
	}

	total := len(records)
	for i := range slices {
		slices[i].Share = float64(slices[i].Count) / float64(total)
	}
	return SectorChart{Slices: slices, Total: total}
}

// BuildCharts computes both charts from records.
func BuildCharts(records []domain.Stock, n int) Charts {
	return Charts{
		Performers: TopPerformers(records, n),
		Sectors:    SectorBreakdown(records),
	}
}
