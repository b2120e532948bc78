package dashboard

import (
	"sync"
	"time"

	"brvm/internal/domain"
)

// State holds the most recent snapshot's records and the active sort. The
// loader replaces it wholesale; sorting reorders it; everything else reads.
type State struct {
	mu        sync.RWMutex
	base      []domain.Stock // load order
	records   []domain.Stock // base ordered by sort
	timestamp time.Time
	sort      SortState
	loaded    bool
}

// NewState returns an empty State sorted by symbol, ascending.
func NewState() *State {
	return &State{sort: DefaultSort}
}

// Replace swaps in the records of snap and re-applies the current sort.
func (s *State) Replace(snap *domain.Snapshot) {
	base := make([]domain.Stock, len(snap.Stocks))
	copy(base, snap.Stocks)
	records := make([]domain.Stock, len(base))
	copy(records, base)

	s.mu.Lock()
	defer s.mu.Unlock()
	sortStocks(records, s.sort)
	s.base = base
	s.records = records
	s.timestamp = snap.Timestamp.Time
	s.loaded = true
}

// Sort toggles direction when field is already active, otherwise switches to
// field ascending. It always orders from load order so ties stay stable.
func (s *State) Sort(field Field, numeric bool) SortState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sort.Field == field {
		s.sort.Ascending = !s.sort.Ascending
	} else {
		s.sort = SortState{Field: field, Ascending: true}
	}
	s.sort.Numeric = numeric

	records := make([]domain.Stock, len(s.base))
	copy(records, s.base)
	sortStocks(records, s.sort)
	s.records = records
	return s.sort
}

// Records returns a copy of the sorted record list.
func (s *State) Records() []domain.Stock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Stock, len(s.records))
	copy(out, s.records)
	return out
}

// Find returns the record with the given symbol.
func (s *State) Find(symbol string) (domain.Stock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.Symbol == symbol {
			return r, true
		}
	}
	return domain.Stock{}, false
}

// Timestamp returns the snapshot time of the current records.
func (s *State) Timestamp() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timestamp
}

// SortState returns the active sort.
func (s *State) SortState() SortState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}

// Loaded reports whether any snapshot has been applied.
func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
