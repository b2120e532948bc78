// Package httpapi serves the snapshot files written by the scraper, and the
// dated history archive, to dashboard clients over HTTP.
package httpapi

import "brvm/internal/domain"

// DatesResponse lists dates that have archived snapshots.
type DatesResponse struct {
	Dates []string `json:"dates"`
}

// HistoryResponse is the latest archived snapshot for a date. Snapshots is
// only filled when the whole day was requested.
type HistoryResponse struct {
	Date      string            `json:"date"`
	Snapshot  *domain.Snapshot  `json:"snapshot"`
	Snapshots []domain.Snapshot `json:"snapshots,omitempty"`
}

// HealthResponse reports whether the data files are present.
type HealthResponse struct {
	Status      string `json:"status"`
	StocksFile  bool   `json:"stocksFile"`
	IndicesFile bool   `json:"indicesFile"`
}
