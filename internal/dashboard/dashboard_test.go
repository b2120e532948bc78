package dashboard

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"brvm/internal/domain"
)

func testFormatter(t *testing.T) *Formatter {
	t.Helper()
	f, err := NewFormatter("en", "XOF", "2006-01-02 15:04")
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}
	return f.WithLocation(time.UTC)
}

func threeStocks() []domain.Stock {
	return []domain.Stock{
		{Symbol: "A", Name: "Alpha", Sector: "Bank", LastPrice: 10, Variation: 2, Volume: 5},
		{Symbol: "B", Name: "Beta", Sector: "Bank", LastPrice: 20, Variation: -3, Volume: 1},
		{Symbol: "C", Name: "Gamma", LastPrice: 5, Variation: 0, Volume: 100},
	}
}

func symbols(records []domain.Stock) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Symbol
	}
	return out
}

// ---------------------------------------------------------------------------
// Formatter
// ---------------------------------------------------------------------------

func TestFormatterCurrencyAndNumber(t *testing.T) {
	f := testFormatter(t)

	if got := f.Currency(14500); got != "14,500 XOF" {
		t.Errorf("Currency(14500) = %q, want %q", got, "14,500 XOF")
	}
	if got := f.Currency(0); got != "0 XOF" {
		t.Errorf("Currency(0) = %q, want %q", got, "0 XOF")
	}
	if got := f.Number(1234567); got != "1,234,567" {
		t.Errorf("Number(1234567) = %q, want %q", got, "1,234,567")
	}
}

func TestFormatterRejectsBadInput(t *testing.T) {
	if _, err := NewFormatter("not a locale!", "XOF", ""); err == nil {
		t.Error("NewFormatter with bad locale should fail")
	}
	if _, err := NewFormatter("fr-FR", "NOPE", ""); err == nil {
		t.Error("NewFormatter with bad currency should fail")
	}
}

func TestFormatterDateTime(t *testing.T) {
	f := testFormatter(t)
	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	if got := f.DateTime(ts); got != "2024-03-15 10:30" {
		t.Errorf("DateTime = %q, want %q", got, "2024-03-15 10:30")
	}
	if got := f.DateTime(time.Time{}); got != "-" {
		t.Errorf("DateTime(zero) = %q, want -", got)
	}
}

func TestFormatVariation(t *testing.T) {
	tests := []struct {
		v     float64
		want  string
		class string
	}{
		{1.25, "▲ 1.25%", "stock-up"},
		{-0.56, "▼ 0.56%", "stock-down"},
		{0, "● 0.00%", "stock-neutral"},
	}
	for _, tt := range tests {
		if got := FormatVariation(tt.v); got != tt.want {
			t.Errorf("FormatVariation(%v) = %q, want %q", tt.v, got, tt.want)
		}
		if got := DirectionOf(tt.v).Class(); got != tt.class {
			t.Errorf("DirectionOf(%v).Class() = %q, want %q", tt.v, got, tt.class)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{999, "999"},
		{1500, "1.5K"},
		{2_500_000, "2.5M"},
		{3_200_000_000, "3.2B"},
	}
	for _, tt := range tests {
		if got := FormatCompact(tt.v); got != tt.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// State and sorting
// ---------------------------------------------------------------------------

func TestStateReplaceSortsBySymbol(t *testing.T) {
	s := NewState()
	if s.Loaded() {
		t.Error("new State should not be loaded")
	}
	ts := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s.Replace(&domain.Snapshot{
		Timestamp: domain.Timestamp{Time: ts},
		Stocks: []domain.Stock{
			{Symbol: "C"}, {Symbol: "A"}, {Symbol: "B"},
		},
	})

	if got := symbols(s.Records()); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("Records() = %v, want [A B C]", got)
	}
	if !s.Timestamp().Equal(ts) {
		t.Errorf("Timestamp() = %v, want %v", s.Timestamp(), ts)
	}
	if !s.Loaded() {
		t.Error("State should be loaded after Replace")
	}
}

func TestStateSortToggle(t *testing.T) {
	s := NewState()
	s.Replace(&domain.Snapshot{Stocks: threeStocks()})

	st := s.Sort(FieldLastPrice, true)
	if st.Field != FieldLastPrice || !st.Ascending {
		t.Fatalf("first Sort = %+v, want last_price ascending", st)
	}
	if got := symbols(s.Records()); !reflect.DeepEqual(got, []string{"C", "A", "B"}) {
		t.Errorf("ascending price = %v, want [C A B]", got)
	}

	st = s.Sort(FieldLastPrice, true)
	if st.Ascending {
		t.Fatal("second Sort on same field should be descending")
	}
	if got := symbols(s.Records()); !reflect.DeepEqual(got, []string{"B", "A", "C"}) {
		t.Errorf("descending price = %v, want [B A C]", got)
	}

	st = s.Sort(FieldName, false)
	if st.Field != FieldName || !st.Ascending {
		t.Errorf("switching field = %+v, want name ascending", st)
	}
}

func TestStateSortIsStable(t *testing.T) {
	s := NewState()
	s.Replace(&domain.Snapshot{Stocks: []domain.Stock{
		{Symbol: "X1", Sector: "Bank"},
		{Symbol: "X2", Sector: "Telecom"},
		{Symbol: "X3", Sector: "Bank"},
		{Symbol: "X4", Sector: "Bank"},
	}})

	s.Sort(FieldSector, false)
	if got := symbols(s.Records()); !reflect.DeepEqual(got, []string{"X1", "X3", "X4", "X2"}) {
		t.Errorf("ascending sector = %v, want [X1 X3 X4 X2]", got)
	}
	s.Sort(FieldSector, false)
	if got := symbols(s.Records()); !reflect.DeepEqual(got, []string{"X2", "X1", "X3", "X4"}) {
		t.Errorf("descending sector = %v, want [X2 X1 X3 X4]", got)
	}
}

func TestStateReplaceKeepsActiveSort(t *testing.T) {
	s := NewState()
	s.Replace(&domain.Snapshot{Stocks: threeStocks()})
	s.Sort(FieldVolume, true)
	s.Sort(FieldVolume, true) // descending

	s.Replace(&domain.Snapshot{Stocks: []domain.Stock{
		{Symbol: "P", Volume: 1}, {Symbol: "Q", Volume: 9}, {Symbol: "R", Volume: 5},
	}})
	if got := symbols(s.Records()); !reflect.DeepEqual(got, []string{"Q", "R", "P"}) {
		t.Errorf("Records after Replace = %v, want [Q R P]", got)
	}
	if st := s.SortState(); st.Field != FieldVolume || st.Ascending {
		t.Errorf("SortState = %+v, want volume descending", st)
	}
}

func TestStateFind(t *testing.T) {
	s := NewState()
	s.Replace(&domain.Snapshot{Stocks: threeStocks()})
	if r, ok := s.Find("B"); !ok || r.Name != "Beta" {
		t.Errorf("Find(B) = %+v, %v", r, ok)
	}
	if _, ok := s.Find("ZZZ"); ok {
		t.Error("Find(ZZZ) should miss")
	}
}

// ---------------------------------------------------------------------------
// Filter
// ---------------------------------------------------------------------------

func TestFilter(t *testing.T) {
	records := threeStocks()

	if got := Filter(records, ""); len(got) != 3 {
		t.Errorf("Filter(blank) returned %d records, want 3", len(got))
	}
	if got := Filter(records, "   "); len(got) != 3 {
		t.Errorf("Filter(spaces) returned %d records, want 3", len(got))
	}
	if got := symbols(Filter(records, "bank")); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Filter(bank) = %v, want [A B]", got)
	}
	if got := symbols(Filter(records, "GAM")); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("Filter(GAM) = %v, want [C]", got)
	}
	if got := Filter(records, "zzz"); len(got) != 0 {
		t.Errorf("Filter(zzz) = %v, want empty", got)
	}
}

func TestFilterThenRenderPlaceholder(t *testing.T) {
	rows := Rows(Filter(threeStocks(), "no-such-stock"), testFormatter(t))
	if len(rows) != 1 || !rows[0].Placeholder || rows[0].Message != NoDataMessage {
		t.Errorf("rows = %+v, want single placeholder", rows)
	}
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func TestRows(t *testing.T) {
	f := testFormatter(t)
	rows := Rows(threeStocks(), f)
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}

	a := rows[0]
	if a.Price != "10 XOF" || a.Value != "50 XOF" || a.Volume != "5" {
		t.Errorf("row A = %+v", a)
	}
	if a.Direction != Up || a.Variation != "▲ 2.00%" {
		t.Errorf("row A variation = %q (%v)", a.Variation, a.Direction)
	}
	want := []RowAction{{ActionDetails, "A"}, {ActionWatch, "A"}}
	if !reflect.DeepEqual(a.Actions, want) {
		t.Errorf("row A actions = %+v, want %+v", a.Actions, want)
	}
	if rows[2].Sector != "" {
		t.Errorf("row C sector = %q, want empty", rows[2].Sector)
	}
}

func TestHeaderIndicatorOnActiveColumnOnly(t *testing.T) {
	cells := Header(Columns, SortState{Field: FieldVolume, Ascending: false})
	active := 0
	for _, c := range cells {
		if c.Indicator == "" {
			continue
		}
		active++
		if c.Column.Field != FieldVolume || c.Indicator != "▼" {
			t.Errorf("indicator on %s = %q", c.Column.Field, c.Indicator)
		}
		if !strings.HasSuffix(c.Title(), "▼") {
			t.Errorf("Title() = %q, want indicator suffix", c.Title())
		}
	}
	if active != 1 {
		t.Errorf("%d columns carry an indicator, want 1", active)
	}
}

func TestDetailFor(t *testing.T) {
	f := testFormatter(t)
	open := 9.5
	records := threeStocks()
	records[0].Open = &open

	d, ok := DetailFor(records, "A", f)
	if !ok {
		t.Fatal("DetailFor(A) missed")
	}
	if d.Open != "10 XOF" {
		t.Errorf("Open = %q, want %q", d.Open, "10 XOF")
	}
	if d.High != "-" {
		t.Errorf("High = %q, want -", d.High)
	}
	if _, ok := DetailFor(records, "Z", f); ok {
		t.Error("DetailFor(Z) should miss")
	}
	if d, _ := DetailFor(records, "C", f); d.Sector != "-" {
		t.Errorf("C sector = %q, want -", d.Sector)
	}
}

// ---------------------------------------------------------------------------
// Charts and summary
// ---------------------------------------------------------------------------

func TestThreeRecordScenario(t *testing.T) {
	records := threeStocks()

	bars := TopPerformers(records, 10)
	gotOrder := make([]string, len(bars))
	for i, b := range bars {
		gotOrder[i] = b.Symbol
	}
	if !reflect.DeepEqual(gotOrder, []string{"B", "A", "C"}) {
		t.Errorf("top performers = %v, want [B A C]", gotOrder)
	}
	if bars[0].Direction != Down || bars[0].Color != Down.Color() {
		t.Errorf("bar B = %+v, want down color", bars[0])
	}

	sectors := SectorBreakdown(records)
	want := []struct {
		name  string
		count int
	}{{"Bank", 2}, {UnspecifiedSector, 1}}
	if len(sectors.Slices) != len(want) {
		t.Fatalf("sector slices = %+v", sectors.Slices)
	}
	for i, w := range want {
		if sectors.Slices[i].Sector != w.name || sectors.Slices[i].Count != w.count {
			t.Errorf("slice %d = %+v, want %s:%d", i, sectors.Slices[i], w.name, w.count)
		}
	}

	rows := Rows(records, testFormatter(t))
	classes := []string{rows[0].Direction.Class(), rows[1].Direction.Class(), rows[2].Direction.Class()}
	if !reflect.DeepEqual(classes, []string{"stock-up", "stock-down", "stock-neutral"}) {
		t.Errorf("classes = %v", classes)
	}
}

func TestTopPerformersLimitAndInputUntouched(t *testing.T) {
	var records []domain.Stock
	for i := 0; i < 15; i++ {
		records = append(records, domain.Stock{Symbol: string(rune('a' + i)), Variation: float64(i)})
	}
	before := symbols(records)

	bars := TopPerformers(records, 10)
	if len(bars) != 10 {
		t.Fatalf("len(bars) = %d, want 10", len(bars))
	}
	if bars[0].Symbol != "o" {
		t.Errorf("first bar = %s, want o", bars[0].Symbol)
	}
	if !reflect.DeepEqual(symbols(records), before) {
		t.Error("TopPerformers reordered its input")
	}
	if got := TopPerformers(records[:3], 10); len(got) != 3 {
		t.Errorf("len(TopPerformers of 3) = %d, want 3", len(got))
	}
}

func TestSectorCountsSumToRecords(t *testing.T) {
	records := append(threeStocks(), domain.Stock{Symbol: "D", Sector: "Telecom"})
	chart := SectorBreakdown(records)
	sum := 0
	var share float64
	for _, s := range chart.Slices {
		sum += s.Count
		share += s.Share
	}
	if sum != len(records) || chart.Total != len(records) {
		t.Errorf("sum = %d, total = %d, want %d", sum, chart.Total, len(records))
	}
	if share < 0.999 || share > 1.001 {
		t.Errorf("shares sum to %v, want 1", share)
	}
}

func TestBuildChartsIsFreshEachCall(t *testing.T) {
	records := threeStocks()
	a := BuildCharts(records, 10)
	b := BuildCharts(records, 10)
	if !reflect.DeepEqual(a, b) {
		t.Error("BuildCharts should be deterministic")
	}
	a.Performers[0].Symbol = "mutated"
	if b.Performers[0].Symbol == "mutated" {
		t.Error("BuildCharts results share storage")
	}

	empty := BuildCharts(nil, 10)
	if len(empty.Performers) != 0 || len(empty.Sectors.Slices) != 0 {
		t.Errorf("BuildCharts(nil) = %+v, want empty", empty)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(threeStocks())
	if s.Count != 3 || s.TotalVolume != 106 {
		t.Errorf("Count/TotalVolume = %d/%d, want 3/106", s.Count, s.TotalVolume)
	}
	if s.TotalValue != 50+20+500 {
		t.Errorf("TotalValue = %v, want 570", s.TotalValue)
	}
	if s.AvgVariation != -1.0/3 {
		t.Errorf("AvgVariation = %v, want %v", s.AvgVariation, -1.0/3)
	}
	if s.Advancers != 1 || s.Decliners != 1 || s.Unchanged != 1 {
		t.Errorf("counts = %+v", s)
	}
	if z := Summarize(nil); z.AvgVariation != 0 || z.Count != 0 {
		t.Errorf("Summarize(nil) = %+v", z)
	}
}
