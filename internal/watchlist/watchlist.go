// Package watchlist keeps the user's set of followed symbols as a JSON array
// in a key/value store.
package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"brvm/internal/store"
)

// Key is the storage key holding the watchlist.
const Key = "brvm_watchlist"

// Outcome reports what a mutation did.
type Outcome int

const (
	Added Outcome = iota + 1
	AlreadyPresent
	Removed
	NotPresent
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case AlreadyPresent:
		return "already present"
	case Removed:
		return "removed"
	case NotPresent:
		return "not present"
	default:
		return "unknown"
	}
}

// ErrEmptySymbol is returned for blank symbols.
var ErrEmptySymbol = errors.New("empty symbol")

// Watchlist reads and writes the persisted symbol set. Add and Remove are
// serialized so concurrent callers never lose an update.
type Watchlist struct {
	mu sync.Mutex
	kv store.KV
}

// New returns a Watchlist over kv.
func New(kv store.KV) *Watchlist {
	return &Watchlist{kv: kv}
}

// List returns the persisted symbols in insertion order. A missing entry is
// an empty list.
func (w *Watchlist) List(ctx context.Context) ([]string, error) {
	raw, ok, err := w.kv.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("reading watchlist: %w", err)
	}
	if !ok || raw == "" {
		return []string{}, nil
	}
	var symbols []string
	if err := json.Unmarshal([]byte(raw), &symbols); err != nil {
		return nil, fmt.Errorf("decoding watchlist: %w", err)
	}
	if symbols == nil {
		symbols = []string{}
	}
	return symbols, nil
}

// Contains reports whether symbol is on the list.
func (w *Watchlist) Contains(ctx context.Context, symbol string) (bool, error) {
	symbols, err := w.List(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(symbols, symbol) >= 0, nil
}

// Add appends symbol if absent. Adding twice leaves a single entry.
func (w *Watchlist) Add(ctx context.Context, symbol string) (Outcome, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return 0, ErrEmptySymbol
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	symbols, err := w.List(ctx)
	if err != nil {
		return 0, err
	}
	if indexOf(symbols, symbol) >= 0 {
		return AlreadyPresent, nil
	}
	if err := w.save(ctx, append(symbols, symbol)); err != nil {
		return 0, err
	}
	return Added, nil
}

// Remove deletes symbol if present.
func (w *Watchlist) Remove(ctx context.Context, symbol string) (Outcome, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return 0, ErrEmptySymbol
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	symbols, err := w.List(ctx)
	if err != nil {
		return 0, err
	}
	i := indexOf(symbols, symbol)
	if i < 0 {
		return NotPresent, nil
	}
	symbols = append(symbols[:i], symbols[i+1:]...)
	if err := w.save(ctx, symbols); err != nil {
		return 0, err
	}
	return Removed, nil
}

func (w *Watchlist) save(ctx context.Context, symbols []string) error {
	data, err := json.Marshal(symbols)
	if err != nil {
		return fmt.Errorf("encoding watchlist: %w", err)
	}
	if err := w.kv.Set(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("saving watchlist: %w", err)
	}
	return nil
}

func indexOf(symbols []string, symbol string) int {
	for i, s := range symbols {
		if s == symbol {
			return i
		}
	}
	return -1
}
