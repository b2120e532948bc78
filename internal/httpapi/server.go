package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"brvm/internal/store"
)

// Files served from the data directory.
const (
	StocksFile  = "stocks.json"
	IndicesFile = "indices.json"
)

// SnapshotServer hosts the scraper's output. It performs no dashboard
// computation; clients read the files as-is.
type SnapshotServer struct {
	dataDir string
	history store.SnapshotArchive
	log     *slog.Logger
}

// NewSnapshotServer creates a server for files in dataDir. history may be nil
// when archiving is disabled.
func NewSnapshotServer(dataDir string, history store.SnapshotArchive, log *slog.Logger) *SnapshotServer {
	return &SnapshotServer{dataDir: dataDir, history: history, log: log}
}

// RegisterRoutes registers all routes on the given mux.
func (s *SnapshotServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /data/stocks.json", s.serveDataFile(StocksFile))
	mux.HandleFunc("GET /data/indices.json", s.serveDataFile(IndicesFile))
	mux.HandleFunc("GET /api/history", s.handleDates)
	mux.HandleFunc("GET /api/history/{date}", s.handleHistory)
	mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns an http.Handler with CORS middleware.
func (s *SnapshotServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Cache-Control")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// serveDataFile passes a data file through unchanged. Query parameters such
// as the t= cache buster are ignored.
func (s *SnapshotServer) serveDataFile(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := os.ReadFile(filepath.Join(s.dataDir, name))
		if err != nil {
			if os.IsNotExist(err) {
				writeError(w, http.StatusNotFound, name+" not available")
				return
			}
			s.log.Error("reading data file", "file", name, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to read "+name)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(data)
	}
}

func (s *SnapshotServer) handleDates(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, DatesResponse{Dates: []string{}})
		return
	}
	dates, err := s.history.ListDates(r.Context())
	if err != nil {
		s.log.Error("listing history dates", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, DatesResponse{Dates: dates})
}

// handleHistory returns the latest snapshot archived on date. With ?all=1 the
// whole day is returned as well, oldest first.
func (s *SnapshotServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history disabled")
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date "+date)
		return
	}

	resp := HistoryResponse{Date: date}
	var err error
	if r.URL.Query().Get("all") != "" {
		resp.Snapshots, err = s.history.ReadSnapshots(r.Context(), date)
		if err == nil && len(resp.Snapshots) == 0 {
			err = store.ErrNotFound
		}
		if err == nil {
			resp.Snapshot = &resp.Snapshots[len(resp.Snapshots)-1]
		}
	} else {
		resp.Snapshot, err = s.history.LatestSnapshot(r.Context(), date)
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no history for "+date)
		return
	}
	if err != nil {
		s.log.Error("reading history", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read history for "+date)
		return
	}
	writeJSON(w, resp)
}

func (s *SnapshotServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, stocksErr := os.Stat(filepath.Join(s.dataDir, StocksFile))
	_, indicesErr := os.Stat(filepath.Join(s.dataDir, IndicesFile))
	resp := HealthResponse{
		Status:      "ok",
		StocksFile:  stocksErr == nil,
		IndicesFile: indicesErr == nil,
	}
	if !resp.StocksFile {
		resp.Status = "degraded"
	}
	writeJSON(w, resp)
}
