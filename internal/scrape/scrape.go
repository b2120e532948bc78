// Package scrape extracts the BRVM quotes table from the exchange's public
// web page and writes the snapshot files the dashboard reads.
package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/net/html"

	"brvm/internal/domain"
)

// Version is recorded in snapshot metadata.
const Version = "1.0"

// Parse errors. Both make the scrape command retry and then fall back to the
// sample snapshot.
var (
	ErrNoTable = errors.New("quotes table not found")
	ErrNoRows  = errors.New("quotes table has no data rows")
)

// Scraper fetches and parses the quotes page.
type Scraper struct {
	url       string
	userAgent string
	client    *http.Client
	log       *slog.Logger
	now       func() time.Time
}

// New returns a Scraper for pageURL. A nil client uses http.DefaultClient.
func New(pageURL, userAgent string, client *http.Client, log *slog.Logger) *Scraper {
	if client == nil {
		client = http.DefaultClient
	}
	return &Scraper{
		url:       pageURL,
		userAgent: userAgent,
		client:    client,
		log:       log,
		now:       time.Now,
	}
}

// Fetch downloads the quotes page and parses it into a snapshot.
func (s *Scraper) Fetch(ctx context.Context) (*domain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.8")
	req.Header.Set("Connection", "keep-alive")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", s.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", s.url, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.url, err)
	}

	stocks, err := ParseQuotes(doc)
	if err != nil {
		return nil, err
	}
	s.log.Info("quotes parsed", "url", s.url, "stocks", len(stocks))
	return NewSnapshot(stocks, s.url, "html", s.now()), nil
}

// NewSnapshot wraps stocks in a snapshot with the default indices.
func NewSnapshot(stocks []domain.Stock, source, method string, now time.Time) *domain.Snapshot {
	return &domain.Snapshot{
		Timestamp:   domain.Timestamp{Time: now},
		Source:      source,
		LastUpdated: now.Format("2006-01-02 15:04:05"),
		Market:      "BRVM",
		Stocks:      stocks,
		Indices:     DefaultIndices(),
		Metadata: &domain.Metadata{
			TotalStocks:    len(stocks),
			ScrapingMethod: method,
			Version:        Version,
		},
	}
}

// DefaultIndices returns the headline indices used when none are parsed.
func DefaultIndices() []domain.MarketIndex {
	return []domain.MarketIndex{
		{Name: "BRVM Composite", Value: 145.67, Change: 0.45},
		{Name: "BRVM 10", Value: 128.34, Change: 0.32},
		{Name: "BRVM AGR", Value: 112.89, Change: -0.12},
		{Name: "BRVM DIST", Value: 98.76, Change: 0.67},
	}
}

// SampleSnapshot is published when the live page cannot be scraped.
func SampleSnapshot(now time.Time) *domain.Snapshot {
	f := func(v float64) *float64 { return &v }
	stocks := []domain.Stock{
		{Symbol: "BICIS", Name: "BICI Côte d'Ivoire", Sector: "Banque", LastPrice: 14500, Variation: 1.25, Volume: 12500,
			Open: f(14300), High: f(14600), Low: f(14250), PreviousClose: f(14320)},
		{Symbol: "ETIT", Name: "Ecobank Transnational", Sector: "Télécom", LastPrice: 8900, Variation: -0.56, Volume: 8900,
			Open: f(8950), High: f(8980), Low: f(8850), PreviousClose: f(8950)},
		{Symbol: "SGBC", Name: "Société Générale", Sector: "Banque", LastPrice: 15600, Variation: 2.15, Volume: 7800,
			Open: f(15300), High: f(15700), Low: f(15250), PreviousClose: f(15272)},
	}
	return NewSnapshot(stocks, "sample", "sample", now)
}

// Save writes v as indented JSON to path, creating parent directories.
func Save(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// SaveSnapshot writes stocks.json and indices.json into dir.
func SaveSnapshot(dir string, snap *domain.Snapshot) error {
	if err := Save(filepath.Join(dir, "stocks.json"), snap); err != nil {
		return err
	}
	return Save(filepath.Join(dir, "indices.json"), domain.IndicesFile{
		Timestamp: snap.Timestamp,
		Indices:   snap.Indices,
	})
}
