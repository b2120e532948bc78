// Package loader fetches the stock snapshot document and applies it to the
// dashboard state.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"brvm/internal/dashboard"
	"brvm/internal/domain"
)

// Sentinel errors; callers match them with errors.Is.
var (
	ErrNetwork = errors.New("data unavailable")
	ErrFormat  = errors.New("invalid data format")
)

const maxBodyBytes = 32 << 20

// Loader reads a snapshot from an HTTP(S) URL or a local file.
type Loader struct {
	source string
	client *http.Client
	state  *dashboard.State
	log    *slog.Logger
	now    func() time.Time
}

// New returns a Loader that reads source and replaces state on success.
// A nil client uses http.DefaultClient.
func New(source string, client *http.Client, state *dashboard.State, log *slog.Logger) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{
		source: source,
		client: client,
		state:  state,
		log:    log,
		now:    time.Now,
	}
}

// Source returns the configured location.
func (l *Loader) Source() string { return l.source }

// Load fetches and decodes the snapshot. With force set, HTTP requests carry
// a t=<unix millis> query parameter so intermediate caches are bypassed. On
// failure the state is left untouched.
func (l *Loader) Load(ctx context.Context, force bool) (*domain.Snapshot, error) {
	data, err := l.fetch(ctx, force)
	if err != nil {
		return nil, err
	}
	snap, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", l.source, err)
	}
	if snap.Timestamp.Unrecognised() {
		l.log.Warn("unrecognised snapshot timestamp", "source", l.source, "timestamp", snap.Timestamp.Raw)
	}
	l.state.Replace(snap)
	l.log.Info("snapshot loaded",
		"source", l.source,
		"stocks", len(snap.Stocks),
		"timestamp", snap.Timestamp.Time,
		"force", force,
	)
	return snap, nil
}

// Decode parses a snapshot document. The stocks field must be present; an
// empty array is valid.
func Decode(data []byte) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if snap.Stocks == nil {
		return nil, fmt.Errorf("%w: missing stocks", ErrFormat)
	}
	return &snap, nil
}

func (l *Loader) fetch(ctx context.Context, force bool) ([]byte, error) {
	if path, ok := localPath(l.source); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w: %v", path, ErrNetwork, err)
		}
		return data, nil
	}

	target := l.source
	if force {
		u, err := url.Parse(l.source)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w: %v", l.source, ErrNetwork, err)
		}
		q := u.Query()
		q.Set("t", strconv.FormatInt(l.now().UnixMilli(), 10))
		u.RawQuery = q.Encode()
		target = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w: %v", target, ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if force {
		req.Header.Set("Cache-Control", "no-cache")
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w: %v", target, ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: %w: status %d", target, ErrNetwork, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w: %v", target, ErrNetwork, err)
	}
	return data, nil
}

// localPath reports whether source names a file rather than an HTTP URL.
func localPath(source string) (string, bool) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return "", false
	}
	if strings.HasPrefix(source, "file://") {
		if u, err := url.Parse(source); err == nil {
			return u.Path, true
		}
		return strings.TrimPrefix(source, "file://"), true
	}
	return source, true
}
