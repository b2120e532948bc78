package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"brvm/internal/domain"
)

// Compile-time interface check.
var _ SnapshotArchive = (*ParquetStore)(nil)

// ParquetStore implements SnapshotArchive using one Parquet file per date.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// QuoteRecord is the Parquet schema for one stock within an archived snapshot.
type QuoteRecord struct {
	SnapshotTime int64   `parquet:"snapshot_time,timestamp(millisecond)"` // Unix ms
	Row          int32   `parquet:"row"`                                  // position within the snapshot
	Symbol       string  `parquet:"symbol"`
	Name         string  `parquet:"name"`
	Sector       string  `parquet:"sector"`
	LastPrice    float64 `parquet:"last_price"`
	Variation    float64 `parquet:"variation"`
	Volume       int64   `parquet:"volume"`
	Source       string  `parquet:"source"`
}

// ---------------------------------------------------------------------------
// SnapshotArchive implementation
// ---------------------------------------------------------------------------

// WriteSnapshot merges snap into the file for its date at:
//
//	<DataDir>/brvm/history/<YYYY-MM-DD>.parquet
//
// Rewriting the same snapshot replaces its rows.
func (s *ParquetStore) WriteSnapshot(_ context.Context, snap *domain.Snapshot) error {
	if snap.Timestamp.IsZero() {
		return errors.New("archiving snapshot: missing timestamp")
	}
	if len(snap.Stocks) == 0 {
		return nil
	}

	ts := snap.Timestamp.UnixMilli()
	records := make([]QuoteRecord, len(snap.Stocks))
	for i, st := range snap.Stocks {
		records[i] = QuoteRecord{
			SnapshotTime: ts,
			Row:          int32(i),
			Symbol:       st.Symbol,
			Name:         st.Name,
			Sector:       st.Sector,
			LastPrice:    st.LastPrice,
			Variation:    st.Variation,
			Volume:       st.Volume,
			Source:       snap.Source,
		}
	}

	path := s.historyPath(snap.Timestamp.UTC().Format("2006-01-02"))
	existing, _ := readParquetFile[QuoteRecord](path)
	merged := mergeQuoteRecords(existing, records)
	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("writing history for %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ListDates lists all dates with archived snapshots.
func (s *ParquetStore) ListDates(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.historyDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".parquet") {
			continue
		}
		date := strings.TrimSuffix(name, ".parquet")
		if _, err := time.Parse("2006-01-02", date); err != nil {
			continue
		}
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}

// ReadSnapshots reads all snapshots archived on date, oldest first.
func (s *ParquetStore) ReadSnapshots(_ context.Context, date string) ([]domain.Snapshot, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	path := s.historyPath(date)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("history %s: %w", date, ErrNotFound)
	}
	records, err := readParquetFile[QuoteRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading history %s: %w", date, err)
	}
	sortQuoteRecords(records)

	var snaps []domain.Snapshot
	for _, r := range records {
		if n := len(snaps); n == 0 || snaps[n-1].Timestamp.UnixMilli() != r.SnapshotTime {
			snaps = append(snaps, domain.Snapshot{
				Timestamp: domain.Timestamp{Time: time.UnixMilli(r.SnapshotTime).UTC()},
				Source:    r.Source,
				Market:    "BRVM",
				Stocks:    []domain.Stock{},
			})
		}
		cur := &snaps[len(snaps)-1]
		cur.Stocks = append(cur.Stocks, domain.Stock{
			Symbol:    r.Symbol,
			Name:      r.Name,
			Sector:    r.Sector,
			LastPrice: r.LastPrice,
			Variation: r.Variation,
			Volume:    r.Volume,
		})
	}
	return snaps, nil
}

// LatestSnapshot returns the most recent snapshot archived on date.
func (s *ParquetStore) LatestSnapshot(ctx context.Context, date string) (*domain.Snapshot, error) {
	snaps, err := s.ReadSnapshots(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("history %s: %w", date, ErrNotFound)
	}
	return &snaps[len(snaps)-1], nil
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

func (s *ParquetStore) historyDir() string {
	return filepath.Join(s.DataDir, "brvm", "history")
}

// historyPath returns the filesystem path for a date's archive.
// Layout: <dataDir>/brvm/history/<YYYY-MM-DD>.parquet
func (s *ParquetStore) historyPath(date string) string {
	return filepath.Join(s.historyDir(), date+".parquet")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeQuoteRecords replaces any existing rows of the incoming snapshot and
// returns the result ordered by (snapshot time, row).
func mergeQuoteRecords(existing, incoming []QuoteRecord) []QuoteRecord {
	replaced := make(map[int64]bool)
	for _, r := range incoming {
		replaced[r.SnapshotTime] = true
	}

	merged := make([]QuoteRecord, 0, len(existing)+len(incoming))
	for _, r := range existing {
		if !replaced[r.SnapshotTime] {
			merged = append(merged, r)
		}
	}
	merged = append(merged, incoming...)
	sortQuoteRecords(merged)
	return merged
}

func sortQuoteRecords(records []QuoteRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].SnapshotTime != records[j].SnapshotTime {
			return records[i].SnapshotTime < records[j].SnapshotTime
		}
		return records[i].Row < records[j].Row
	})
}
