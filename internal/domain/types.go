// Package domain defines the core types shared across the BRVM observatory:
// listed stocks, market indices and the snapshot that carries them.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Stock is one listed security as published in a snapshot.
type Stock struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Sector    string  `json:"sector,omitempty"` // empty means unspecified
	LastPrice float64 `json:"last_price"`
	Variation float64 `json:"variation"` // percent change, signed
	Volume    int64   `json:"volume"`

	// Session extras written by the scraper when the quotes table has them.
	Open          *float64 `json:"open,omitempty"`
	High          *float64 `json:"high,omitempty"`
	Low           *float64 `json:"low,omitempty"`
	PreviousClose *float64 `json:"previous_close,omitempty"`
}

// Value returns the traded value (last price times volume).
func (s Stock) Value() float64 {
	return s.LastPrice * float64(s.Volume)
}

// MarketIndex is a headline exchange index such as BRVM Composite.
type MarketIndex struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Change float64 `json:"change"`
}

// Metadata describes how a snapshot was produced.
type Metadata struct {
	TotalStocks    int    `json:"total_stocks"`
	ScrapingMethod string `json:"scraping_method"`
	Version        string `json:"version"`
}

// Snapshot is one fetched, timestamped batch of stock records. A new snapshot
// replaces all prior data; there is no incremental merge.
type Snapshot struct {
	Timestamp   Timestamp     `json:"timestamp"`
	Source      string        `json:"source,omitempty"`
	LastUpdated string        `json:"last_updated,omitempty"`
	Market      string        `json:"market,omitempty"`
	Stocks      []Stock       `json:"stocks"`
	Indices     []MarketIndex `json:"indices,omitempty"`
	Metadata    *Metadata     `json:"metadata,omitempty"`
}

// IndicesFile is the layout of the standalone indices.json document.
type IndicesFile struct {
	Timestamp Timestamp     `json:"timestamp"`
	Indices   []MarketIndex `json:"indices"`
}

// Timestamp is a time.Time that tolerates the zone-less ISO-8601 forms
// commonly found in snapshot files. A value no layout recognises decodes to
// the zero time and is kept verbatim in Raw.
type Timestamp struct {
	time.Time
	Raw string
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// ParseTimestamp parses s using the first layout that matches. Zone-less
// values are interpreted as UTC.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Unrecognised reports whether the source held a timestamp that could not be
// parsed.
func (t Timestamp) Unrecognised() bool {
	return t.IsZero() && t.Raw != ""
}

// UnmarshalJSON accepts null, "", any supported layout and Unix epochs in
// seconds or milliseconds. It never fails on an unknown value.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			t.Raw = string(data)
			return nil
		}
		s = n.String()
	}
	if s == "" {
		return nil
	}
	if parsed, err := ParseTimestamp(s); err == nil {
		*t = parsed
		return nil
	}
	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
		if epoch > 1e11 {
			t.Time = time.UnixMilli(epoch).UTC()
		} else {
			t.Time = time.Unix(epoch, 0).UTC()
		}
		return nil
	}
	t.Raw = s
	return nil
}

// MarshalJSON writes RFC 3339, the unparsed source value, or null for the
// zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Unrecognised() {
		return json.Marshal(t.Raw)
	}
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
