package loader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"brvm/internal/dashboard"
	"brvm/internal/domain"
)

const sampleDoc = `{
	"timestamp": "2024-03-15T10:30:00",
	"stocks": [
		{"symbol": "SNTS", "name": "Sonatel", "sector": "Télécom", "last_price": 15000, "variation": 0.5, "volume": 100},
		{"symbol": "BICIS", "name": "BICI-S", "last_price": 14500, "variation": 1.25, "volume": 12500}
	]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadHTTP(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, sampleDoc)
	}))
	defer srv.Close()

	state := dashboard.NewState()
	l := New(srv.URL+"/data/stocks.json", srv.Client(), state, testLogger())

	snap, err := l.Load(context.Background(), false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Stocks) != 2 {
		t.Errorf("len(Stocks) = %d, want 2", len(snap.Stocks))
	}
	if gotQuery != "" {
		t.Errorf("unforced query = %q, want empty", gotQuery)
	}

	// Records are sorted by symbol on replace.
	records := state.Records()
	if records[0].Symbol != "BICIS" || records[1].Symbol != "SNTS" {
		t.Errorf("state records = %v, %v", records[0].Symbol, records[1].Symbol)
	}
	want := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	if !state.Timestamp().Equal(want) {
		t.Errorf("state timestamp = %v, want %v", state.Timestamp(), want)
	}
}

func TestLoadForceAddsCacheBuster(t *testing.T) {
	var gotT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotT = r.URL.Query().Get("t")
		io.WriteString(w, sampleDoc)
	}))
	defer srv.Close()

	l := New(srv.URL+"/stocks.json?v=1", srv.Client(), dashboard.NewState(), testLogger())
	l.now = func() time.Time { return time.UnixMilli(1710498600000) }

	if _, err := l.Load(context.Background(), true); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if gotT != "1710498600000" {
		t.Errorf("t = %q, want 1710498600000", gotT)
	}
}

func TestLoadNetworkErrorLeavesStateUntouched(t *testing.T) {
	state := dashboard.NewState()
	state.Replace(&domain.Snapshot{Stocks: []domain.Stock{{Symbol: "KEEP"}}})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	l := New(srv.URL, srv.Client(), state, testLogger())
	_, err := l.Load(context.Background(), false)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	if r := state.Records(); len(r) != 1 || r[0].Symbol != "KEEP" {
		t.Errorf("state changed after failure: %+v", r)
	}

	// Unreachable endpoint.
	srv.Close()
	if _, err := l.Load(context.Background(), false); !errors.Is(err, ErrNetwork) {
		t.Errorf("unreachable err = %v, want ErrNetwork", err)
	}
}

func TestLoadFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"missing stocks", `{"timestamp": "2024-03-15T10:30:00"}`},
		{"null stocks", `{"stocks": null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.body
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			}))
			defer srv.Close()

			state := dashboard.NewState()
			l := New(srv.URL, srv.Client(), state, testLogger())
			if _, err := l.Load(context.Background(), false); !errors.Is(err, ErrFormat) {
				t.Errorf("err = %v, want ErrFormat", err)
			}
			if state.Loaded() {
				t.Error("state loaded after format error")
			}
		})
	}
}

func TestLoadToleratesUnknownTimestamp(t *testing.T) {
	body := `{"timestamp": "mid-session", "stocks": [{"symbol": "SNTS", "last_price": 15000}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	}))
	defer srv.Close()

	state := dashboard.NewState()
	l := New(srv.URL, srv.Client(), state, testLogger())
	snap, err := l.Load(context.Background(), false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !snap.Timestamp.IsZero() || snap.Timestamp.Raw != "mid-session" {
		t.Errorf("timestamp = %+v, want zero with Raw", snap.Timestamp)
	}
	if !state.Loaded() || len(state.Records()) != 1 {
		t.Errorf("state not replaced: loaded=%v records=%d", state.Loaded(), len(state.Records()))
	}
	if !state.Timestamp().IsZero() {
		t.Errorf("state timestamp = %v, want zero", state.Timestamp())
	}
}

func TestDecodeTimestampForms(t *testing.T) {
	for _, ts := range []string{`"2024-03-15T10:30:00+0000"`, `"15/03/2024 10:30"`, `1710498600`} {
		snap, err := Decode([]byte(`{"timestamp": ` + ts + `, "stocks": []}`))
		if err != nil {
			t.Errorf("Decode(timestamp %s): %v", ts, err)
			continue
		}
		if want := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC); !snap.Timestamp.Equal(want) {
			t.Errorf("timestamp %s = %v, want %v", ts, snap.Timestamp.Time, want)
		}
	}
}

func TestLoadEmptyArrayIsValid(t *testing.T) {
	snap, err := Decode([]byte(`{"stocks": []}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if snap.Stocks == nil || len(snap.Stocks) != 0 {
		t.Errorf("Stocks = %v, want empty non-nil", snap.Stocks)
	}
}

func TestLoadLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stocks.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, source := range []string{path, "file://" + path} {
		state := dashboard.NewState()
		l := New(source, nil, state, testLogger())
		if _, err := l.Load(context.Background(), true); err != nil {
			t.Errorf("Load(%s): %v", source, err)
			continue
		}
		if len(state.Records()) != 2 {
			t.Errorf("Load(%s) records = %d, want 2", source, len(state.Records()))
		}
	}

	l := New(filepath.Join(dir, "missing.json"), nil, dashboard.NewState(), testLogger())
	if _, err := l.Load(context.Background(), false); !errors.Is(err, ErrNetwork) {
		t.Errorf("missing file err = %v, want ErrNetwork", err)
	}
}
